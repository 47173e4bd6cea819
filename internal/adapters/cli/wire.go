package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"unit-recon/internal/app"
	"unit-recon/internal/cache"
	"unit-recon/internal/config"
	"unit-recon/internal/core"
	"unit-recon/internal/db"
	"unit-recon/internal/memstore"
)

// openService builds the application service for cfg. The returned close function
// releases the database pool and Redis client; it is never nil.
func openService(ctx context.Context, cfg config.Config) (app.ApplicationService, func(), error) {
	var (
		store   core.Store
		ping    func(context.Context) error
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on exit")
		store = memstore.New()
	default:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, closeAll, fmt.Errorf("database: %w", err)
		}
		closers = append(closers, pool.Close)
		store = core.NewPostgresStore(pool)
		ping = pool.Ping
	}

	var guard core.AutoLinkGuard = cache.NewMemoryGuard()
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, debouncing auto-link in process")
		} else {
			closers = append(closers, func() { _ = rdb.Close() })
			guard = cache.NewRedisGuard(rdb)
		}
	}

	return app.NewAppService(store, guard, cfg.AutoLinkDebounce, ping), closeAll, nil
}
