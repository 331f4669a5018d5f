package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/entity"
	domainRepo "github.com/scenart/agency-api/internal/domain/repository"
	"github.com/scenart/agency-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type paymentBatchRepository struct {
	db *gorm.DB
}

// NewPaymentBatchRepository creates a new payment batch repository
func NewPaymentBatchRepository(db *gorm.DB) domainRepo.PaymentBatchRepository {
	return &paymentBatchRepository{db: db}
}

func (r *paymentBatchRepository) Create(ctx context.Context, batch *entity.PaymentBatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Progressive code per year. The unique constraint on code turns a
		// concurrent-run collision into an insert error instead of a dup.
		var count int64
		if err := tx.Model(&entity.PaymentBatch{}).
			Where("year = ?", batch.Year).
			Count(&count).Error; err != nil {
			return err
		}
		batch.Code = fmt.Sprintf("BP-%d-%d", batch.Year, count+1)
		return tx.Create(batch).Error
	})
}

func (r *paymentBatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.PaymentBatch, error) {
	var batch entity.PaymentBatch
	err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &batch, err
}

func (r *paymentBatchRepository) UpdateAggregates(ctx context.Context, id uuid.UUID, count int, total decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&entity.PaymentBatch{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"receipt_count": count,
			"total_amount":  total,
		}).Error
}

func (r *paymentBatchRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.PaymentBatch, int64, error) {
	var batches []entity.PaymentBatch
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PaymentBatch{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("generated_at DESC").
		Offset(params.Offset()).
		Limit(params.PerPage).
		Find(&batches).Error
	return batches, total, err
}
