package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bmapp/internal/models/request_models"
	"bmapp/internal/models/response_models"
	"bmapp/internal/services"
	"bmapp/pkg/middleware"
	"bmapp/pkg/utils"
)

type BiodataController struct {
	biodataService services.BiodataService
	paymentService services.PaymentService
	log            *zap.Logger
}

func NewBiodataController(biodataService services.BiodataService, paymentService services.PaymentService, log *zap.Logger) *BiodataController {
	return &BiodataController{
		biodataService: biodataService,
		paymentService: paymentService,
		log:            log,
	}
}

func sendPDF(c *gin.Context, doc *response_models.RenderedDocument) {
	c.Header("Content-Disposition", "attachment; filename="+doc.Filename)
	c.Header("Content-Length", strconv.Itoa(len(doc.Content)))
	c.Data(http.StatusOK, "application/pdf", doc.Content)
}

// Create godoc
// @Summary Create a biodata
// @Description Store the submitted form and return the id and the RevenueCat app_user_id to purchase with
// @Tags Biodata
// @Accept json
// @Produce json
// @Param request body request_models.CreateBiodataRequest true "Biodata"
// @Success 201 {object} utils.APIResponse
// @Security BearerAuth
// @Router /biodata/create [post]
func (b *BiodataController) Create(c *gin.Context) {
	var request request_models.CreateBiodataRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	meta := request_models.RequestMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
	created, err := b.biodataService.Create(c.Request.Context(), c.GetString(middleware.UserIDKey), request, meta)
	if err != nil {
		utils.HandleServiceError(c, b.log, err)
		return
	}

	utils.RespondCreated(c, created, "Biodata created successfully")
}

// List godoc
// @Summary List the caller's biodata
// @Tags Biodata
// @Produce json
// @Success 200 {array} response_models.BiodataResponse
// @Security BearerAuth
// @Router /biodata [get]
func (b *BiodataController) List(c *gin.Context) {
	items, err := b.biodataService.List(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		utils.HandleServiceError(c, b.log, err)
		return
	}
	utils.RespondSuccess(c, items, "Biodata fetched successfully")
}

// Get godoc
// @Summary Get one biodata
// @Tags Biodata
// @Produce json
// @Param id path string true "Biodata ID"
// @Success 200 {object} response_models.BiodataResponse
// @Security BearerAuth
// @Router /biodata/{id} [get]
func (b *BiodataController) Get(c *gin.Context) {
	item, err := b.biodataService.Get(c.Request.Context(), c.GetString(middleware.UserIDKey), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, b.log, err)
		return
	}
	utils.RespondSuccess(c, item, "Biodata fetched successfully")
}

// Status godoc
// @Summary Payment status of a biodata
// @Tags Biodata
// @Produce json
// @Param id path string true "Biodata ID"
// @Success 200 {object} response_models.PaymentStatusResponse
// @Security BearerAuth
// @Router /biodata/{id}/status [get]
func (b *BiodataController) Status(c *gin.Context) {
	status, err := b.biodataService.Status(c.Request.Context(), c.GetString(middleware.UserIDKey), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, b.log, err)
		return
	}
	utils.RespondSuccess(c, status, "Payment status fetched successfully")
}

// Download godoc
// @Summary Download the PDF of a paid biodata
// @Tags Biodata
// @Produce application/pdf
// @Param id path string true "Biodata ID"
// @Success 200 {file} file
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /biodata/{id}/download [get]
func (b *BiodataController) Download(c *gin.Context) {
	doc, err := b.biodataService.Download(c.Request.Context(), c.GetString(middleware.UserIDKey), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, b.log, err)
		return
	}
	sendPDF(c, doc)
}

// UpdatePayment godoc
// @Summary Confirm a store purchase and download the PDF
// @Description Verifies the transaction with RevenueCat, marks the biodata paid and streams the PDF
// @Tags Biodata
// @Accept json
// @Produce application/pdf
// @Param request body request_models.UpdatePaymentRequest true "Purchase"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /biodata/update-payment [post]
func (b *BiodataController) UpdatePayment(c *gin.Context) {
	var request request_models.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	request.Normalize()

	// The user has already paid; a dropped connection must not abandon the confirmation.
	ctx := context.WithoutCancel(c.Request.Context())
	owner := c.GetString(middleware.UserIDKey)

	record, err := b.paymentService.VerifyPurchase(ctx, owner, request.ID, request.TransactionID, request.ProductID)
	if err != nil {
		utils.HandleServiceError(c, b.log, err)
		return
	}

	doc, err := b.biodataService.Fulfill(ctx, record)
	if err != nil {
		utils.HandleServiceError(c, b.log, err)
		return
	}
	sendPDF(c, doc)
}
