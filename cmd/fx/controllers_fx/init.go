package controllers_fx

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bmapp/internal/api"
	"bmapp/internal/api/controllers"
	"bmapp/internal/config"
	"bmapp/pkg/utils"
)

var Module = fx.Options(
	fx.Provide(controllers.NewBiodataController),
	fx.Provide(controllers.NewTemplateController),
	fx.Provide(controllers.NewHealthController),
	fx.Provide(provideRouter),
)

type routerParams struct {
	fx.In

	Biodata  *controllers.BiodataController
	Payment  *controllers.PaymentController
	Template *controllers.TemplateController
	Health   *controllers.HealthController
	Verifier utils.IdentityVerifier
	Config   *config.Config
	Log      *zap.Logger
}

func provideRouter(p routerParams) *gin.Engine {
	if !p.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	return api.NewRouter(api.Controllers{
		Biodata:  p.Biodata,
		Payment:  p.Payment,
		Template: p.Template,
		Health:   p.Health,
	}, p.Verifier, p.Config.CORSAllowOrigins, p.Log)
}
