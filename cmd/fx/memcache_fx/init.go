package memcache_fx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"bmapp/internal/config"
	mem "bmapp/pkg/memcache"
)

var Module = fx.Provide(provideStore)

// provideStore uses redis when REDIS_URL is set and an in-process store otherwise.
func provideStore(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (mem.Store, error) {
	if cfg.Redis.URL == "" {
		return mem.NewMemoryStore(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := mem.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	log.Info("redis cache connected")
	return mem.NewRedisStore(client, "bmapp:", log), nil
}
