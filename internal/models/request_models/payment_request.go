package request_models

import "strings"

// UpdatePaymentRequest is sent by the app after a store purchase completes.
// The camelCase fields are accepted for older app builds.
type UpdatePaymentRequest struct {
	ID            string `json:"id" binding:"required"`
	TransactionID string `json:"transaction_id"`
	ProductID     string `json:"product_id"`

	LegacyTransactionID string `json:"transactionId"`
	LegacyProductID     string `json:"productId"`
}

func (r *UpdatePaymentRequest) Normalize() {
	if r.TransactionID == "" {
		r.TransactionID = r.LegacyTransactionID
	}
	if r.ProductID == "" {
		r.ProductID = r.LegacyProductID
	}
	r.ID = strings.TrimSpace(r.ID)
	r.TransactionID = strings.TrimSpace(r.TransactionID)
	r.ProductID = strings.TrimSpace(r.ProductID)
}
