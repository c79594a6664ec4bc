package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bmapp/internal/api/controllers"
	"bmapp/pkg/middleware"
	"bmapp/pkg/utils"
)

type Controllers struct {
	Biodata  *controllers.BiodataController
	Payment  *controllers.PaymentController
	Template *controllers.TemplateController
	Health   *controllers.HealthController
}

// NewRouter builds the engine with the global middleware chain and all routes.
func NewRouter(ctrl Controllers, verifier utils.IdentityVerifier, corsOrigins []string, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(log))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(corsOrigins))

	RegisterRoutes(r, ctrl, middleware.AuthMiddleware(verifier, log))
	return r
}

func RegisterRoutes(r *gin.Engine, ctrl Controllers, auth gin.HandlerFunc) {
	r.GET("/healthz", ctrl.Health.Health)

	biodataGroup := r.Group("/biodata", auth)
	biodataGroup.POST("/create", ctrl.Biodata.Create)
	biodataGroup.POST("/update-payment", ctrl.Biodata.UpdatePayment)
	biodataGroup.GET("", ctrl.Biodata.List)
	biodataGroup.GET("/:id", ctrl.Biodata.Get)
	biodataGroup.GET("/:id/status", ctrl.Biodata.Status)
	biodataGroup.GET("/:id/download", ctrl.Biodata.Download)

	templateGroup := r.Group("/template")
	templateGroup.GET("/list", ctrl.Template.List)
	templateGroup.POST("/preview", ctrl.Template.Preview)

	webhookGroup := r.Group("/webhook")
	webhookGroup.POST("/revenuecat", ctrl.Payment.RevenueCatWebhook)
}
