package db_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bmapp/internal/config"
	"bmapp/internal/infra"
	"bmapp/internal/repositories"
)

var Module = fx.Options(
	fx.Provide(provideDB),
	fx.Provide(
		repositories.NewBiodataRepository,
		repositories.NewConfigRepository,
		repositories.NewPaymentEventRepository,
	),
)

func provideDB(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := infra.InitPostgresql(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := infra.AutoMigrate(db); err != nil {
			return nil, err
		}
		log.Info("schema auto-migrated")
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			infra.ClosePostgresql(db, log)
			return nil
		},
	})
	return db, nil
}
