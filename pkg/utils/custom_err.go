package utils

import "errors"

var (
	ErrBiodataNotFound       = errors.New("biodata not found")
	ErrInvalidBiodataID      = errors.New("invalid biodata id")
	ErrInvalidFormData       = errors.New("form data is required")
	ErrInvalidTemplate       = errors.New("invalid template_id")
	ErrInvalidChannel        = errors.New("invalid channel")
	ErrInvalidCurrency       = errors.New("invalid currency")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrPaymentRequired       = errors.New("payment not completed")
	ErrProductMismatch       = errors.New("product does not match template")
	ErrTransactionRequired   = errors.New("transaction id is required")
	ErrTransactionInUse      = errors.New("transaction already used for another biodata")
	ErrPurchaseNotVerified   = errors.New("purchase could not be verified")
	ErrProviderUnavailable   = errors.New("payment provider unavailable")
	ErrProviderNotConfigured = errors.New("payment provider not configured")
	ErrWebhookUnauthorized   = errors.New("webhook authentication failed")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDatabaseError         = errors.New("database error")
)
