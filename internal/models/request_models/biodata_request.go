package request_models

import (
	"encoding/json"
	"strings"
)

type CreateBiodataRequest struct {
	TemplateID string          `json:"template_id" binding:"required"`
	FormData   json.RawMessage `json:"form_data" binding:"required"`
	ImagePath  *string         `json:"image_path,omitempty"`
	Channel    string          `json:"channel,omitempty"`
	Amount     *float64        `json:"amount,omitempty"`
	Currency   string          `json:"currency,omitempty"`
}

// RequestMeta is captured from the HTTP request, not the body.
type RequestMeta struct {
	UserAgent string
	IPAddress string
}

type PreviewRequest struct {
	TemplateID string          `json:"template_id" binding:"required"`
	FormData   json.RawMessage `json:"form_data" binding:"required"`
	ImagePath  *string         `json:"image_path,omitempty"`
}

// HasContent reports whether raw holds a non-empty JSON object or array.
func HasContent(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	switch s {
	case "", "null", "{}", "[]", `""`:
		return false
	}
	return json.Valid(raw)
}
