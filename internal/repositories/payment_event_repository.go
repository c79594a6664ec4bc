package repositories

import (
	"context"

	"gorm.io/gorm"

	"bmapp/internal/models/db_models"
)

type PaymentEventRepository interface {
	Record(ctx context.Context, ev *db_models.PaymentEvent) error
	ListByTransactionID(ctx context.Context, transactionID string) ([]db_models.PaymentEvent, error)
}

type paymentEventRepository struct {
	db *gorm.DB
}

func NewPaymentEventRepository(db *gorm.DB) PaymentEventRepository {
	return &paymentEventRepository{db: db}
}

func (r *paymentEventRepository) Record(ctx context.Context, ev *db_models.PaymentEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *paymentEventRepository) ListByTransactionID(ctx context.Context, transactionID string) ([]db_models.PaymentEvent, error) {
	var out []db_models.PaymentEvent
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}
