package pricing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/seminar-quote/internal/model"
)

const (
	testTableKey     = "seminar_prices"
	testTimestampKey = "seminar_prices_timestamp"
)

type countingSource struct {
	calls atomic.Int32
	fetch func(ctx context.Context, call int32) (model.PriceTable, error)
}

func (s *countingSource) Fetch(ctx context.Context) (model.PriceTable, error) {
	call := s.calls.Add(1)
	return s.fetch(ctx, call)
}

func tableWith(path string, value float64) model.PriceTable {
	table := model.NewPriceTable()
	table.Set(path, value)
	return table
}

func staticSource(table model.PriceTable) *countingSource {
	return &countingSource{fetch: func(context.Context, int32) (model.PriceTable, error) {
		return table, nil
	}}
}

func failingSource() *countingSource {
	return &countingSource{fetch: func(context.Context, int32) (model.PriceTable, error) {
		return model.PriceTable{}, errors.New("unreachable")
	}}
}

func newTestResolver(remote, local Source, store Store, opts Options) *Resolver {
	cache := NewCache(store, testTableKey, testTimestampKey, opts.MaxAge)
	return NewResolver(remote, local, cache, opts, zerolog.Nop())
}

func TestResolvePrefersRemoteAndCachesIt(t *testing.T) {
	store := NewMemoryStore()
	remote := staticSource(tableWith(KeyPackageBase, 80))
	local := staticSource(tableWith(KeyPackageBase, 60))
	resolver := newTestResolver(remote, local, store, Options{MaxAge: 5 * time.Minute})

	res := resolver.Resolve(context.Background())
	if res.Origin != OriginRemote {
		t.Fatalf("expected remote origin, got %s", res.Origin)
	}
	if got := res.Table.Price(KeyPackageBase); got != 80 {
		t.Fatalf("expected remote price 80, got %f", got)
	}
	if local.calls.Load() != 0 {
		t.Fatalf("local source must not be read when remote succeeds")
	}
	if _, ok, _ := store.Get(context.Background(), testTableKey); !ok {
		t.Fatalf("expected resolved table to be cached")
	}
	if _, ok, _ := store.Get(context.Background(), testTimestampKey); !ok {
		t.Fatalf("expected cache timestamp to be written")
	}
}

func TestResolveTwiceWithinMaxAgeSkipsRemote(t *testing.T) {
	store := NewMemoryStore()
	remote := staticSource(tableWith(KeyPackageBase, 80))
	opts := Options{MaxAge: 5 * time.Minute}

	first := newTestResolver(remote, nil, store, opts)
	first.Resolve(context.Background())
	first.Resolve(context.Background())
	if got := remote.calls.Load(); got != 1 {
		t.Fatalf("expected one remote call, got %d", got)
	}

	// a second session reads the durable cache
	second := newTestResolver(remote, nil, store, opts)
	res := second.Resolve(context.Background())
	if res.Origin != OriginCache {
		t.Fatalf("expected cache origin, got %s", res.Origin)
	}
	if got := res.Table.Price(KeyPackageBase); got != 80 {
		t.Fatalf("expected cached price 80, got %f", got)
	}
	if got := remote.calls.Load(); got != 1 {
		t.Fatalf("expected cache hit without remote call, got %d calls", got)
	}
}

func TestResolveForceRefreshBypassesCache(t *testing.T) {
	store := NewMemoryStore()
	remote := staticSource(tableWith(KeyPackageBase, 80))
	cache := NewCache(store, testTableKey, testTimestampKey, time.Hour)
	if err := cache.Save(context.Background(), tableWith(KeyPackageBase, 50)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	resolver := newTestResolver(remote, nil, store, Options{MaxAge: time.Hour, ForceRefresh: true})
	res := resolver.Resolve(context.Background())
	if res.Origin != OriginRemote || res.Table.Price(KeyPackageBase) != 80 {
		t.Fatalf("expected fresh remote table, got %s %f", res.Origin, res.Table.Price(KeyPackageBase))
	}
}

func TestResolveExpiredCacheIsIgnored(t *testing.T) {
	store := NewMemoryStore()
	cache := NewCache(store, testTableKey, testTimestampKey, time.Minute)
	cache.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	if err := cache.Save(context.Background(), tableWith(KeyPackageBase, 50)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	remote := staticSource(tableWith(KeyPackageBase, 80))
	resolver := newTestResolver(remote, nil, store, Options{MaxAge: time.Minute})
	if res := resolver.Resolve(context.Background()); res.Origin != OriginRemote {
		t.Fatalf("expected expired cache to be skipped, got %s", res.Origin)
	}
}

func TestRefreshBypassesValidCache(t *testing.T) {
	store := NewMemoryStore()
	remote := staticSource(tableWith(KeyPackageBase, 80))
	resolver := newTestResolver(remote, nil, store, Options{MaxAge: time.Hour})

	resolver.Resolve(context.Background())
	res := resolver.Refresh(context.Background())

	if got := remote.calls.Load(); got != 2 {
		t.Fatalf("expected refresh to hit remote again, got %d calls", got)
	}
	if res.Origin != OriginRemote {
		t.Fatalf("expected remote origin after refresh, got %s", res.Origin)
	}
}

func TestResolveFallsBackToLocalThenDefaults(t *testing.T) {
	store := NewMemoryStore()
	local := staticSource(tableWith(KeyPackageBase, 60))
	resolver := newTestResolver(failingSource(), local, store, Options{MaxAge: time.Hour})

	res := resolver.Resolve(context.Background())
	if res.Origin != OriginLocal || res.Table.Price(KeyPackageBase) != 60 {
		t.Fatalf("expected local fallback, got %s %f", res.Origin, res.Table.Price(KeyPackageBase))
	}
	if _, ok, _ := store.Get(context.Background(), testTableKey); !ok {
		t.Fatalf("expected local table to be cached")
	}

	resolver = newTestResolver(failingSource(), failingSource(), NewMemoryStore(), Options{MaxAge: time.Hour})
	res = resolver.Resolve(context.Background())
	if !res.IsDefault() {
		t.Fatalf("expected defaults, got %s", res.Origin)
	}
	if got := res.Table.Price(KeyPackageBase); got != 74 {
		t.Fatalf("expected default base price 74, got %f", got)
	}
}

func TestResolveTreatsEmptyTableAsFailure(t *testing.T) {
	remote := staticSource(model.NewPriceTable())
	local := staticSource(tableWith(KeyPackageBase, 60))
	resolver := newTestResolver(remote, local, NewMemoryStore(), Options{MaxAge: time.Hour})

	if res := resolver.Resolve(context.Background()); res.Origin != OriginLocal {
		t.Fatalf("expected local fallback for empty remote table, got %s", res.Origin)
	}
}

func TestResolveSharesInFlightResolution(t *testing.T) {
	release := make(chan struct{})
	remote := &countingSource{fetch: func(context.Context, int32) (model.PriceTable, error) {
		<-release
		return tableWith(KeyPackageBase, 80), nil
	}}
	resolver := newTestResolver(remote, nil, NewMemoryStore(), Options{MaxAge: time.Hour})

	const callers = 8
	var wg sync.WaitGroup
	results := make([]Resolution, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = resolver.Resolve(context.Background())
		}(i)
	}

	deadline := time.Now().Add(2 * time.Second)
	for remote.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := remote.calls.Load(); got != 1 {
		t.Fatalf("expected a single remote fetch, got %d", got)
	}
	for i, res := range results {
		if res.Table.Price(KeyPackageBase) != 80 {
			t.Fatalf("caller %d got %f", i, res.Table.Price(KeyPackageBase))
		}
	}
}

func TestRefreshDiscardsSupersededResolution(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	remote := &countingSource{fetch: func(_ context.Context, call int32) (model.PriceTable, error) {
		if call == 1 {
			close(firstStarted)
			<-releaseFirst
			return tableWith(KeyPackageBase, 10), nil
		}
		return tableWith(KeyPackageBase, 20), nil
	}}
	resolver := newTestResolver(remote, nil, NewMemoryStore(), Options{MaxAge: time.Hour, ForceRefresh: true})

	stale := make(chan Resolution, 1)
	go func() { stale <- resolver.Resolve(context.Background()) }()
	<-firstStarted

	fresh := resolver.Refresh(context.Background())
	if got := fresh.Table.Price(KeyPackageBase); got != 20 {
		t.Fatalf("expected refreshed price 20, got %f", got)
	}

	close(releaseFirst)
	if got := (<-stale).Table.Price(KeyPackageBase); got != 10 {
		t.Fatalf("in-flight caller should still receive its own result, got %f", got)
	}
	if got := resolver.Price(KeyPackageBase); got != 20 {
		t.Fatalf("superseded result must not replace the refreshed table, got %f", got)
	}
}

func TestPricesBeforeFirstResolutionAreDefaults(t *testing.T) {
	resolver := newTestResolver(failingSource(), nil, NewMemoryStore(), Options{MaxAge: time.Hour})
	if resolver.IsLoaded() {
		t.Fatalf("resolver must not report loaded before resolving")
	}
	if got := resolver.Price(KeyOccupancyTax); got != 2.5 {
		t.Fatalf("expected default occupancy tax, got %f", got)
	}
	resolver.Resolve(context.Background())
	if !resolver.IsLoaded() {
		t.Fatalf("expected resolver to be loaded")
	}
	resolver.ClearCache(context.Background())
	if resolver.IsLoaded() {
		t.Fatalf("expected ClearCache to drop the session table")
	}
}

func TestResolveReturnsCurrentTableWhenContextEnds(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	remote := &countingSource{fetch: func(context.Context, int32) (model.PriceTable, error) {
		<-release
		return tableWith(KeyPackageBase, 80), nil
	}}
	resolver := newTestResolver(remote, nil, NewMemoryStore(), Options{MaxAge: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res := resolver.Resolve(ctx)
	if !res.IsDefault() || res.Table.Price(KeyPackageBase) != 74 {
		t.Fatalf("expected defaults while resolution is pending, got %s", res.Origin)
	}
}

func TestResolverWithHTTPSources(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("expected JSON accept header, got %q", r.Header.Get("Accept"))
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	dir := t.TempDir()
	fallback := filepath.Join(dir, "prices.json")
	if err := os.WriteFile(fallback, []byte(`{"1tag": {"base_price": 69}}`), 0o600); err != nil {
		t.Fatalf("write fallback: %v", err)
	}

	remote := NewRemoteSource(server.URL, time.Second, server.Client())
	local := NewLocalSource(fallback, time.Second, nil)
	resolver := newTestResolver(remote, local, NewMemoryStore(), Options{MaxAge: time.Hour})

	res := resolver.Resolve(context.Background())
	if res.Origin != OriginLocal {
		t.Fatalf("expected local origin after non-2xx remote, got %s", res.Origin)
	}
	if got := res.Table.Price(KeyPackageBase); got != 69 {
		t.Fatalf("expected 69, got %f", got)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one remote request, got %d", hits.Load())
	}
}
