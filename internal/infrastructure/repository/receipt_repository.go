package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/entity"
	"github.com/scenart/agency-api/internal/domain/enum"
	domainRepo "github.com/scenart/agency-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *gorm.DB) domainRepo.ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) CreateNumbered(ctx context.Context, receipt *entity.Receipt, numbered func(seq int)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextCounterValue(tx, receipt.PerformerID, receipt.Year)
		if err != nil {
			return err
		}
		numbered(seq)
		return tx.Create(receipt).Error
	})
}

func (r *receiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := r.db.WithContext(ctx).
		Preload("Performer").
		First(&receipt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

func (r *receiptRepository) GetByToken(ctx context.Context, token string) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := r.db.WithContext(ctx).
		Preload("Performer").
		First(&receipt, "signature_token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

func (r *receiptRepository) List(ctx context.Context, params *domainRepo.ReceiptFilterParams) ([]entity.Receipt, int64, error) {
	var receipts []entity.Receipt
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Receipt{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.BatchID != nil {
		query = query.Where("batch_id = ?", *params.BatchID)
	}
	if params.PerformerID != nil {
		query = query.Where("performer_id = ?", *params.PerformerID)
	}
	if params.Year != nil {
		query = query.Where("year = ?", *params.Year)
	}
	if params.Search != "" {
		query = query.Where("code ILIKE ?", "%"+params.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pg := params.Pagination
	err := query.
		Preload("Performer").
		Order("created_at DESC").
		Offset(pg.Offset()).
		Limit(pg.PerPage).
		Find(&receipts).Error
	return receipts, total, err
}

func (r *receiptRepository) Update(ctx context.Context, receipt *entity.Receipt) error {
	return r.db.WithContext(ctx).Save(receipt).Error
}

func (r *receiptRepository) MutateByToken(ctx context.Context, token string, mutate func(rec *entity.Receipt) error) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&receipt, "signature_token = ?", token).Error; err != nil {
			return err
		}
		if err := mutate(&receipt); err != nil {
			return err
		}
		return tx.Save(&receipt).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Reload the performer for callers that render the signed receipt.
	if err := r.db.WithContext(ctx).First(&receipt.Performer, "id = ?", receipt.PerformerID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Receipt{}).
		Where("status IN ? AND token_expires_at < ?",
			[]enum.ReceiptStatus{enum.ReceiptStatusGenerata, enum.ReceiptStatusSollecitata}, now).
		Update("status", enum.ReceiptStatusScaduta)
	return result.RowsAffected, result.Error
}
