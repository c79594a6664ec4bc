package response_models

// WebhookAck is returned to RevenueCat for every authenticated delivery.
type WebhookAck struct {
	Result    string `json:"result"`
	Message   string `json:"message,omitempty"`
	BiodataID string `json:"biodata_id,omitempty"`
	EventID   string `json:"event_id,omitempty"`
}
