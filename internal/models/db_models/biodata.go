package db_models

import (
	"time"

	"gorm.io/datatypes"

	"bmapp/internal/reconcile"
)

type PaymentStatus = reconcile.Status

const (
	PaymentStatusInitiated = reconcile.StatusInitiated
	PaymentStatusSuccess   = reconcile.StatusSuccess
	PaymentStatusError     = reconcile.StatusError
)

type Channel string

const (
	ChannelAndroid Channel = "ANDROID"
	ChannelIOS     Channel = "IOS"
	ChannelWeb     Channel = "WEB"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelAndroid, ChannelIOS, ChannelWeb:
		return true
	}
	return false
}

const (
	CurrencyINR = "INR"
	CurrencyUSD = "USD"
)

// Biodata is one form submission and its payment/fulfillment lifecycle.
// TransactionID is NULL until payment is confirmed; the unique index ignores NULLs.
type Biodata struct {
	BaseModel
	OwnerID    string         `gorm:"size:128;not null;index"`
	TemplateID string         `gorm:"size:32;not null"`
	FormData   datatypes.JSON `gorm:"not null"`
	ImagePath  *string        `gorm:"size:1024"`
	Channel    Channel        `gorm:"size:16;not null;default:WEB"`
	Amount     float64        `gorm:"not null;default:0"`
	Currency   string         `gorm:"size:3;not null;default:INR"`
	UserAgent  string         `gorm:"size:512"`
	IPAddress  string         `gorm:"size:64"`

	PaymentStatus       PaymentStatus  `gorm:"size:16;not null;default:INITIATED;index"`
	PaymentProviderType *string        `gorm:"size:32"`
	ConfirmationSource  *string        `gorm:"size:32"`
	TransactionID       *string        `gorm:"size:255;uniqueIndex:idx_biodata_transaction_id"`
	AppUserID           string         `gorm:"size:300;not null"`
	ProductID           *string        `gorm:"size:128"`
	ProviderResponse    datatypes.JSON
	WebhookEventType    *string        `gorm:"size:64"`
	WebhookReceivedAt   *time.Time
	PaymentConfirmedAt  *time.Time

	PDFGenerated   bool       `gorm:"column:pdf_generated;not null;default:false"`
	PDFGeneratedAt *time.Time `gorm:"column:pdf_generated_at"`
}

func (Biodata) TableName() string { return "biodata" }

// Snapshot projects the fields the confirmation rules need.
func (b *Biodata) Snapshot() *reconcile.Snapshot {
	if b == nil {
		return nil
	}
	s := &reconcile.Snapshot{
		ID:         b.ID.String(),
		OwnerID:    b.OwnerID,
		TemplateID: b.TemplateID,
		Status:     b.PaymentStatus,
	}
	if b.TransactionID != nil {
		s.TransactionID = *b.TransactionID
	}
	return s
}
