package controllers

import (
	"context"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bmapp/internal/models/response_models"
	"bmapp/internal/reconcile"
	"bmapp/internal/services"
	"bmapp/pkg/utils"
)

const maxWebhookBody = 1 << 20

type PaymentController struct {
	paymentService services.PaymentService
	log            *zap.Logger
}

func NewPaymentController(paymentService services.PaymentService, log *zap.Logger) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		log:            log,
	}
}

// RevenueCatWebhook godoc
// @Summary RevenueCat webhook
// @Description Acknowledges every authenticated delivery with 200 so RevenueCat stops retrying
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /webhook/revenuecat [post]
func (p *PaymentController) RevenueCatWebhook(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
	switch {
	case err != nil:
		p.unreadable(c, "unable to read request body", err)
		return
	case len(raw) > maxWebhookBody:
		p.unreadable(c, fmt.Sprintf("payload exceeds %d bytes", maxWebhookBody), nil)
		return
	}

	ack, err := p.paymentService.HandleWebhook(
		context.WithoutCancel(c.Request.Context()),
		c.GetHeader("Authorization"),
		c.GetHeader("X-RevenueCat-Signature"),
		raw,
	)
	if err != nil {
		utils.HandleServiceError(c, p.log, err)
		return
	}

	utils.RespondSuccess(c, ack, "Webhook received")
}

// unreadable acknowledges a delivery whose body could not be taken in whole.
func (p *PaymentController) unreadable(c *gin.Context, reason string, err error) {
	p.log.Warn("Unreadable RevenueCat webhook body", zap.String("reason", reason), zap.Error(err))
	utils.RespondSuccess(c, &response_models.WebhookAck{
		Result:  string(reconcile.OutcomeInvalidPayload),
		Message: reason,
	}, "Webhook received")
}
