package payment_service_fx

import (
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"bmapp/internal/api/controllers"
	"bmapp/internal/config"
	"bmapp/internal/repositories"
	"bmapp/internal/services"
)

var Module = fx.Provide(
	providePurchaseVerifier, providePaymentService, providePaymentController,
)

func providePurchaseVerifier(cfg *config.Config, log *zap.Logger) services.PurchaseVerifier {
	rc := cfg.RevenueCat
	if rc.APIKey == "" || rc.ProjectID == "" {
		log.Warn("RevenueCat API not configured; client purchase verification will fail")
	}
	return services.NewRevenueCatClient(services.RevenueCatConfig{
		APIKey:    rc.APIKey,
		ProjectID: rc.ProjectID,
		BaseURL:   rc.BaseURL,
	}, &http.Client{Timeout: rc.Timeout})
}

func providePaymentService(
	biodata repositories.BiodataRepository,
	events repositories.PaymentEventRepository,
	verifier services.PurchaseVerifier,
	cfg *config.Config,
	log *zap.Logger,
) services.PaymentService {
	if cfg.RevenueCat.WebhookToken == "" && cfg.RevenueCat.WebhookSigningSecret == "" {
		log.Warn("RevenueCat webhook secret not configured; all deliveries will be rejected")
	}
	return services.NewPaymentService(biodata, events, verifier, services.WebhookAuth{
		Token:         cfg.RevenueCat.WebhookToken,
		SigningSecret: cfg.RevenueCat.WebhookSigningSecret,
	}, log)
}

func providePaymentController(paymentService services.PaymentService, log *zap.Logger) *controllers.PaymentController {
	return controllers.NewPaymentController(paymentService, log)
}
