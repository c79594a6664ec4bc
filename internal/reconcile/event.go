package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	EventTypeNonRenewingPurchase = "NON_RENEWING_PURCHASE"
	EventTypeTest                = "TEST"
)

var ErrInvalidPayload = errors.New("invalid webhook payload")

// Event is one RevenueCat webhook delivery. The concrete types are
// NonRenewingPurchase, TestEvent and UnhandledEvent.
type Event interface {
	EventID() string
	EventType() string
	isEvent()
}

// NonRenewingPurchase is a completed one-time purchase, the only event that confirms payment.
type NonRenewingPurchase struct {
	ID                       string
	AppUserID                string
	OriginalAppUserID        string
	TransactionID            string
	OriginalTransactionID    string
	ProductID                string
	Price                    float64
	PriceInPurchasedCurrency float64
	Currency                 string
	Store                    string
	Environment              string
	EventTimestampMs         int64
	PurchasedAtMs            int64
}

type TestEvent struct {
	ID string
}

type UnhandledEvent struct {
	ID   string
	Type string
}

func (e NonRenewingPurchase) EventID() string   { return e.ID }
func (e NonRenewingPurchase) EventType() string { return EventTypeNonRenewingPurchase }
func (NonRenewingPurchase) isEvent()            {}

func (e TestEvent) EventID() string   { return e.ID }
func (e TestEvent) EventType() string { return EventTypeTest }
func (TestEvent) isEvent()            {}

func (e UnhandledEvent) EventID() string   { return e.ID }
func (e UnhandledEvent) EventType() string { return e.Type }
func (UnhandledEvent) isEvent()            {}

type webhookEnvelope struct {
	APIVersion string          `json:"api_version"`
	Event      *webhookPayload `json:"event"`
}

type webhookPayload struct {
	Type                     string  `json:"type"`
	ID                       string  `json:"id"`
	AppUserID                string  `json:"app_user_id"`
	OriginalAppUserID        string  `json:"original_app_user_id"`
	TransactionID            string  `json:"transaction_id"`
	OriginalTransactionID    string  `json:"original_transaction_id"`
	ProductID                string  `json:"product_id"`
	Price                    float64 `json:"price"`
	PriceInPurchasedCurrency float64 `json:"price_in_purchased_currency"`
	Currency                 string  `json:"currency"`
	Store                    string  `json:"store"`
	Environment              string  `json:"environment"`
	EventTimestampMs         int64   `json:"event_timestamp_ms"`
	PurchasedAtMs            int64   `json:"purchased_at_ms"`
}

// ParseWebhook decodes a raw delivery body. A purchase event without a
// transaction id or app_user_id is rejected as ErrInvalidPayload.
func ParseWebhook(raw []byte) (Event, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if env.Event == nil || env.Event.Type == "" {
		return nil, fmt.Errorf("%w: missing event", ErrInvalidPayload)
	}

	p := env.Event
	switch strings.ToUpper(p.Type) {
	case EventTypeNonRenewingPurchase:
		if p.TransactionID == "" || p.AppUserID == "" {
			return nil, fmt.Errorf("%w: purchase without transaction_id or app_user_id", ErrInvalidPayload)
		}
		return NonRenewingPurchase{
			ID:                       p.ID,
			AppUserID:                p.AppUserID,
			OriginalAppUserID:        p.OriginalAppUserID,
			TransactionID:            p.TransactionID,
			OriginalTransactionID:    p.OriginalTransactionID,
			ProductID:                p.ProductID,
			Price:                    p.Price,
			PriceInPurchasedCurrency: p.PriceInPurchasedCurrency,
			Currency:                 p.Currency,
			Store:                    p.Store,
			Environment:              p.Environment,
			EventTimestampMs:         p.EventTimestampMs,
			PurchasedAtMs:            p.PurchasedAtMs,
		}, nil
	case EventTypeTest:
		return TestEvent{ID: p.ID}, nil
	default:
		return UnhandledEvent{ID: p.ID, Type: p.Type}, nil
	}
}
