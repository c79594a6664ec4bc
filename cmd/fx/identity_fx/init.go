package identity_fx

import (
	"net/http"
	"time"

	"go.uber.org/fx"

	"bmapp/internal/config"
	"bmapp/pkg/utils"
)

var Module = fx.Provide(provideVerifier)

func provideVerifier(cfg *config.Config) utils.IdentityVerifier {
	if cfg.Auth.Mode == config.AuthModeFirebase {
		return utils.NewFirebaseVerifier(cfg.Auth.FirebaseProjectID, &http.Client{Timeout: 10 * time.Second})
	}
	return utils.NewJWTVerifier(cfg.Auth.JWTSecret)
}
