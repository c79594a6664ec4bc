package render_fx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"bmapp/internal/config"
	"bmapp/internal/render"
)

var Module = fx.Provide(provideImageLoader, provideRenderer)

func provideImageLoader(cfg *config.Config, log *zap.Logger) render.ImageLoader {
	loader := render.SchemeImageLoader{HTTP: render.NewHTTPImageLoader(nil)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := render.NewS3Client(ctx, cfg.S3.Region, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		log.Warn("S3 image loading disabled", zap.Error(err))
		return loader
	}
	loader.S3 = render.NewS3ImageLoader(client)
	return loader
}

func provideRenderer(images render.ImageLoader, cfg *config.Config, log *zap.Logger) (render.Renderer, error) {
	return render.NewPDFRenderer(images, log, cfg.RenderFontPath)
}
