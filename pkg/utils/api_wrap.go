package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	return c.GetString("trace_id")
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	RespondWithStatus(c, http.StatusOK, data, message)
}

func RespondCreated(c *gin.Context, data interface{}, message string) {
	RespondWithStatus(c, http.StatusCreated, data, message)
}

func RespondWithStatus(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, APIResponse{
		Status:  "success",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// RespondBindError turns binding/validation failures into a 400 naming the offending fields.
func RespondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
		}
		RespondError(c, http.StatusBadRequest, "Invalid request payload: "+strings.Join(fields, ", "))
		return
	}
	RespondError(c, http.StatusBadRequest, "Invalid request payload")
}

// HandleServiceError maps service errors onto the HTTP error taxonomy.
func HandleServiceError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrWebhookUnauthorized):
		RespondError(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, ErrPaymentRequired):
		RespondError(c, http.StatusForbidden, "Payment not completed for this biodata")
	case errors.Is(err, ErrBiodataNotFound):
		RespondError(c, http.StatusNotFound, "Biodata not found or you don't have access to it")
	case errors.Is(err, ErrInvalidBiodataID),
		errors.Is(err, ErrInvalidFormData),
		errors.Is(err, ErrInvalidTemplate),
		errors.Is(err, ErrInvalidChannel),
		errors.Is(err, ErrInvalidCurrency),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrProductMismatch),
		errors.Is(err, ErrTransactionRequired),
		errors.Is(err, ErrTransactionInUse),
		errors.Is(err, ErrPurchaseNotVerified):
		RespondError(c, http.StatusBadRequest, capitalize(err.Error()))
	case errors.Is(err, ErrProviderUnavailable), errors.Is(err, ErrProviderNotConfigured):
		log.Error("payment provider error", zap.String("trace_id", traceID(c)), zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "Payment verification is temporarily unavailable")
	default:
		log.Error("unhandled service error", zap.String("trace_id", traceID(c)), zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
