package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bmapp/internal/models/db_models"
	"bmapp/internal/reconcile"
	"bmapp/pkg/utils"
)

type BiodataRepository interface {
	Create(ctx context.Context, b *db_models.Biodata) error
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.Biodata, error)
	FindByIDAndOwner(ctx context.Context, id uuid.UUID, ownerID string) (*db_models.Biodata, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*db_models.Biodata, error)
	ListByOwner(ctx context.Context, ownerID string) ([]db_models.Biodata, error)

	// ConfirmPayment applies t only if the record is not yet SUCCESS. applied is
	// false when another writer got there first. A transaction id already held
	// by a different record yields utils.ErrTransactionInUse.
	ConfirmPayment(ctx context.Context, t reconcile.Transition, providerResponse []byte) (applied bool, err error)
	// MarkFulfilled flips pdf_generated on a paid record once.
	MarkFulfilled(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type biodataRepository struct {
	db *gorm.DB
}

func NewBiodataRepository(db *gorm.DB) BiodataRepository {
	return &biodataRepository{db: db}
}

// listColumns is the subset of fields exposed by list and detail reads.
var listColumns = []string{"id", "template_id", "form_data", "image_path", "created_at"}

func (r *biodataRepository) Create(ctx context.Context, b *db_models.Biodata) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("create biodata: %w", err)
	}
	return nil
}

func (r *biodataRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.Biodata, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *biodataRepository) FindByIDAndOwner(ctx context.Context, id uuid.UUID, ownerID string) (*db_models.Biodata, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID))
}

func (r *biodataRepository) FindByTransactionID(ctx context.Context, transactionID string) (*db_models.Biodata, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("transaction_id = ?", transactionID))
}

func (r *biodataRepository) first(_ context.Context, q *gorm.DB) (*db_models.Biodata, error) {
	var b db_models.Biodata
	if err := q.First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return &b, nil
}

func (r *biodataRepository) ListByOwner(ctx context.Context, ownerID string) ([]db_models.Biodata, error) {
	var out []db_models.Biodata
	err := r.db.WithContext(ctx).
		Select(listColumns).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return out, nil
}

func (r *biodataRepository) ConfirmPayment(ctx context.Context, t reconcile.Transition, providerResponse []byte) (bool, error) {
	id, err := uuid.Parse(t.RecordID)
	if err != nil {
		return false, utils.ErrInvalidBiodataID
	}

	updates := map[string]interface{}{
		"payment_status":        string(reconcile.StatusSuccess),
		"transaction_id":        t.TransactionID,
		"app_user_id":           t.AppUserID,
		"payment_provider_type": t.ProviderType,
		"confirmation_source":   string(t.Source),
		"payment_confirmed_at":  t.ConfirmedAt,
		"updated_at":            time.Now(),
	}
	if t.ProductID != "" {
		updates["product_id"] = t.ProductID
	}
	if len(providerResponse) > 0 {
		updates["provider_response"] = datatypes.JSON(providerResponse)
	}
	if t.Source == reconcile.SourceWebhook {
		updates["webhook_event_type"] = t.EventType
		updates["webhook_received_at"] = t.ConfirmedAt
	}

	res := r.db.WithContext(ctx).
		Model(&db_models.Biodata{}).
		Where("id = ? AND payment_status <> ?", id, string(reconcile.StatusSuccess)).
		Updates(updates)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, utils.ErrTransactionInUse
		}
		return false, fmt.Errorf("%w: confirm payment: %v", utils.ErrDatabaseError, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *biodataRepository) MarkFulfilled(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db_models.Biodata{}).
		Where("id = ? AND payment_status = ? AND pdf_generated = ?", id, string(reconcile.StatusSuccess), false).
		Updates(map[string]interface{}{
			"pdf_generated":    true,
			"pdf_generated_at": at,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("%w: mark fulfilled: %v", utils.ErrDatabaseError, res.Error)
	}
	return res.RowsAffected == 1, nil
}
