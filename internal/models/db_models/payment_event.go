package db_models

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentEvent is an audit row per authenticated webhook delivery.
type PaymentEvent struct {
	ID            uint           `gorm:"primaryKey"`
	Provider      string         `gorm:"size:32;not null;index:idx_payment_events_provider_event"`
	EventID       string         `gorm:"size:128;index:idx_payment_events_provider_event"`
	EventType     string         `gorm:"size:64;not null"`
	AppUserID     string         `gorm:"size:300"`
	TransactionID string         `gorm:"size:255;index"`
	Outcome       string         `gorm:"size:32;not null"`
	Error         string         `gorm:"size:1024"`
	Payload       datatypes.JSON `gorm:"not null"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index"`
}
