// Package pricing resolves the seminar price table from the published price
// sheet, a local fallback file, a timed cache and built-in defaults.
package pricing

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/nurpe/seminar-quote/internal/model"
)

// Origin tells which tier a resolved table came from.
type Origin string

const (
	OriginCache    Origin = "cache"
	OriginRemote   Origin = "remote"
	OriginLocal    Origin = "local"
	OriginDefaults Origin = "defaults"
)

type Resolution struct {
	Table      model.PriceTable
	Origin     Origin
	ResolvedAt time.Time
}

// IsDefault reports whether every other tier failed.
func (r Resolution) IsDefault() bool {
	return r.Origin == OriginDefaults
}

type Options struct {
	// ForceRefresh skips the cache tier on every resolution.
	ForceRefresh bool
	// MaxAge bounds how long a resolved table is reused before the chain
	// runs again. It is also the cache validity window.
	MaxAge time.Duration
}

// Resolver owns one session's price table. Concurrent Resolve calls share a
// single in-flight resolution.
type Resolver struct {
	remote Source
	local  Source
	cache  *Cache
	opts   Options
	log    zerolog.Logger
	now    func() time.Time

	group singleflight.Group

	mu         sync.RWMutex
	generation uint64
	current    *Resolution
}

func NewResolver(remote, local Source, cache *Cache, opts Options, log zerolog.Logger) *Resolver {
	return &Resolver{
		remote: remote,
		local:  local,
		cache:  cache,
		opts:   opts,
		log:    log.With().Str("component", "price_resolver").Logger(),
		now:    time.Now,
	}
}

// Resolve returns the session table, running the resolution chain when
// nothing is loaded yet or the loaded table has outlived MaxAge. It never
// fails: if ctx ends first, the current or default table is returned.
func (r *Resolver) Resolve(ctx context.Context) Resolution {
	if res, ok := r.fresh(); ok {
		return res
	}
	return r.load(ctx)
}

// Refresh drops the cache and forces a full resolution. A resolution
// already in flight finishes but its result is discarded.
func (r *Resolver) Refresh(ctx context.Context) Resolution {
	r.invalidate(ctx)
	return r.load(ctx)
}

// ClearCache drops the cache and the session table without reloading.
func (r *Resolver) ClearCache(ctx context.Context) {
	r.invalidate(ctx)
}

func (r *Resolver) IsLoaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current != nil
}

// Prices returns the session table, or the defaults before the first
// resolution has completed.
func (r *Resolver) Prices() model.PriceTable {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return DefaultTable()
	}
	return r.current.Table
}

func (r *Resolver) Price(path string) float64 {
	return r.Prices().Price(path)
}

func (r *Resolver) invalidate(ctx context.Context) {
	r.mu.Lock()
	r.generation++
	r.current = nil
	r.mu.Unlock()

	if err := r.cache.Clear(ctx); err != nil {
		r.log.Warn().Err(err).Msg("failed to clear price cache")
	}
}

func (r *Resolver) fresh() (Resolution, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return Resolution{}, false
	}
	if r.opts.MaxAge > 0 && r.now().Sub(r.current.ResolvedAt) >= r.opts.MaxAge {
		return Resolution{}, false
	}
	return *r.current, true
}

func (r *Resolver) load(ctx context.Context) Resolution {
	r.mu.RLock()
	generation := r.generation
	r.mu.RUnlock()

	ch := r.group.DoChan(strconv.FormatUint(generation, 10), func() (interface{}, error) {
		// shared by every waiter, so not bound to the first caller's context
		detached := context.WithoutCancel(ctx)
		res := r.resolveChain(detached)
		r.publish(detached, generation, res)
		return res, nil
	})

	select {
	case result := <-ch:
		return result.Val.(Resolution)
	case <-ctx.Done():
		r.log.Warn().Err(ctx.Err()).Msg("price resolution still running, serving current table")
		return Resolution{Table: r.Prices(), Origin: r.currentOrigin(), ResolvedAt: r.now()}
	}
}

// publish installs res unless a refresh started after it; only installed
// remote and local tables are written to the cache.
func (r *Resolver) publish(ctx context.Context, generation uint64, res Resolution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if generation != r.generation {
		r.log.Debug().Str("origin", string(res.Origin)).Msg("discarding superseded price resolution")
		return
	}
	r.current = &res

	if res.Origin != OriginRemote && res.Origin != OriginLocal {
		return
	}
	if err := r.cache.Save(ctx, res.Table); err != nil {
		r.log.Warn().Err(err).Msg("failed to write price cache")
	}
}

func (r *Resolver) currentOrigin() Origin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return OriginDefaults
	}
	return r.current.Origin
}

func (r *Resolver) resolveChain(ctx context.Context) Resolution {
	if !r.opts.ForceRefresh {
		if table, storedAt, ok := r.cache.Load(ctx); ok {
			r.log.Debug().Time("stored_at", storedAt).Msg("prices served from cache")
			return Resolution{Table: table, Origin: OriginCache, ResolvedAt: storedAt}
		}
	}

	if table, ok := r.fetch(ctx, r.remote, OriginRemote); ok {
		return r.resolved(table, OriginRemote)
	}
	if table, ok := r.fetch(ctx, r.local, OriginLocal); ok {
		return r.resolved(table, OriginLocal)
	}

	r.log.Error().Msg("no price source available, using built-in defaults")
	return Resolution{Table: DefaultTable(), Origin: OriginDefaults, ResolvedAt: r.now()}
}

func (r *Resolver) fetch(ctx context.Context, source Source, origin Origin) (model.PriceTable, bool) {
	if source == nil {
		return model.PriceTable{}, false
	}
	table, err := source.Fetch(ctx)
	if err != nil {
		r.log.Warn().Err(err).Str("origin", string(origin)).Msg("price source failed, falling back")
		return model.PriceTable{}, false
	}
	if table.IsEmpty() {
		r.log.Warn().Str("origin", string(origin)).Msg("price source returned no prices, falling back")
		return model.PriceTable{}, false
	}
	return table, true
}

func (r *Resolver) resolved(table model.PriceTable, origin Origin) Resolution {
	r.log.Info().Str("origin", string(origin)).Int("prices", len(table.Entries())).Msg("prices resolved")
	return Resolution{Table: table, Origin: origin, ResolvedAt: r.now()}
}
