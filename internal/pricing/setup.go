package pricing

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/nurpe/seminar-quote/internal/config"
)

// NewResolverFromConfig builds the resolver with both sources and the cache
// backed by store.
func NewResolverFromConfig(cfg config.PricesConfig, store Store, client *http.Client, log zerolog.Logger) *Resolver {
	if client == nil {
		client = &http.Client{}
	}
	return NewResolver(
		NewRemoteSource(cfg.SourceURL, cfg.FetchTimeout, client),
		NewLocalSource(cfg.FallbackPath, cfg.FetchTimeout, client),
		NewCache(store, cfg.CacheKey, cfg.CacheTimestampKey, cfg.CacheMaxAge),
		Options{ForceRefresh: cfg.ForceRefresh, MaxAge: cfg.CacheMaxAge},
		log,
	)
}
