package controllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bmapp/internal/models/request_models"
	"bmapp/internal/services"
	"bmapp/pkg/utils"
)

type TemplateController struct {
	templateService services.TemplateService
	log             *zap.Logger
}

func NewTemplateController(templateService services.TemplateService, log *zap.Logger) *TemplateController {
	return &TemplateController{templateService: templateService, log: log}
}

// List godoc
// @Summary List templates with prices
// @Tags Templates
// @Produce json
// @Param currency query string false "INR or USD" default(INR)
// @Success 200 {array} response_models.TemplateItem
// @Router /template/list [get]
func (t *TemplateController) List(c *gin.Context) {
	items, err := t.templateService.List(c.Request.Context(), c.DefaultQuery("currency", "INR"))
	if err != nil {
		utils.HandleServiceError(c, t.log, err)
		return
	}
	utils.RespondSuccess(c, items, "Templates fetched successfully")
}

// Preview godoc
// @Summary Render a watermarked preview
// @Tags Templates
// @Accept json
// @Produce application/pdf
// @Param request body request_models.PreviewRequest true "Preview"
// @Success 200 {file} file
// @Router /template/preview [post]
func (t *TemplateController) Preview(c *gin.Context) {
	var request request_models.PreviewRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	doc, err := t.templateService.Preview(c.Request.Context(), request)
	if err != nil {
		utils.HandleServiceError(c, t.log, err)
		return
	}
	sendPDF(c, doc)
}
