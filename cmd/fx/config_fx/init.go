package config_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bmapp/internal/config"
	"bmapp/pkg/logger"
)

var Module = fx.Provide(provideConfig, provideLogger)

func provideConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.IsDevelopment())
}
