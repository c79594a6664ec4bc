package biodata_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bmapp/internal/config"
	"bmapp/internal/render"
	"bmapp/internal/repositories"
	"bmapp/internal/services"
	"bmapp/pkg/memcache"
)

var Module = fx.Provide(
	services.NewBiodataService,
	provideTemplateService,
)

func provideTemplateService(
	configRepo repositories.ConfigRepository,
	cache memcache.Store,
	renderer render.Renderer,
	cfg *config.Config,
	log *zap.Logger,
) services.TemplateService {
	return services.NewTemplateService(configRepo, cache, cfg.PriceCacheTTL, renderer, log)
}
