package response_models

import (
	"encoding/json"
	"time"
)

type CreateBiodataResponse struct {
	ID        string `json:"id"`
	AppUserID string `json:"app_user_id"`
}

type BiodataResponse struct {
	ID         string          `json:"id"`
	TemplateID string          `json:"template_id"`
	FormData   json.RawMessage `json:"form_data"`
	ImagePath  *string         `json:"image_path"`
	CreatedAt  time.Time       `json:"created_at"`
}

type PaymentStatusResponse struct {
	PaymentStatus string  `json:"payment_status"`
	PDFReady      bool    `json:"pdf_ready"`
	TransactionID *string `json:"transaction_id"`
}

// RenderedDocument is a finished PDF ready to stream.
type RenderedDocument struct {
	Filename string
	Content  []byte
}
