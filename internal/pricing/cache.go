package pricing

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nurpe/seminar-quote/internal/model"
)

// Store is the durable key-value storage the cache lives in.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Cache keeps the last resolved table with its timestamp in a Store. An
// entry older than maxAge, or one that cannot be read back, counts as absent.
type Cache struct {
	store        Store
	tableKey     string
	timestampKey string
	maxAge       time.Duration
	now          func() time.Time
}

func NewCache(store Store, tableKey, timestampKey string, maxAge time.Duration) *Cache {
	return &Cache{
		store:        store,
		tableKey:     tableKey,
		timestampKey: timestampKey,
		maxAge:       maxAge,
		now:          time.Now,
	}
}

// Load returns the cached table and when it was stored.
func (c *Cache) Load(ctx context.Context) (model.PriceTable, time.Time, bool) {
	if c == nil || c.store == nil {
		return model.PriceTable{}, time.Time{}, false
	}

	rawStamp, ok, err := c.store.Get(ctx, c.timestampKey)
	if err != nil || !ok {
		return model.PriceTable{}, time.Time{}, false
	}
	millis, err := strconv.ParseInt(strings.TrimSpace(rawStamp), 10, 64)
	if err != nil {
		return model.PriceTable{}, time.Time{}, false
	}
	storedAt := time.UnixMilli(millis)
	if c.now().Sub(storedAt) >= c.maxAge {
		return model.PriceTable{}, time.Time{}, false
	}

	rawTable, ok, err := c.store.Get(ctx, c.tableKey)
	if err != nil || !ok {
		return model.PriceTable{}, time.Time{}, false
	}
	table, err := DecodeNested(strings.NewReader(rawTable))
	if err != nil || table.IsEmpty() {
		return model.PriceTable{}, time.Time{}, false
	}
	return table, storedAt, true
}

// Save writes the table and the current time in milliseconds.
func (c *Cache) Save(ctx context.Context, table model.PriceTable) error {
	if c == nil || c.store == nil {
		return nil
	}
	encoded, err := json.Marshal(table)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, c.tableKey, string(encoded)); err != nil {
		return err
	}
	return c.store.Set(ctx, c.timestampKey, strconv.FormatInt(c.now().UnixMilli(), 10))
}

func (c *Cache) Clear(ctx context.Context) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Delete(ctx, c.tableKey, c.timestampKey)
}

// MemoryStore is a process-local Store, used when no database is configured
// and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
