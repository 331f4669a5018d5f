package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/entity"
	"github.com/scenart/agency-api/internal/domain/enum"
	domainRepo "github.com/scenart/agency-api/internal/domain/repository"
	"github.com/scenart/agency-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type remittanceRepository struct {
	db *gorm.DB
}

// NewRemittanceRepository creates a new remittance repository
func NewRemittanceRepository(db *gorm.DB) domainRepo.RemittanceRepository {
	return &remittanceRepository{db: db}
}

func (r *remittanceRepository) CreateWithReceipts(ctx context.Context, remittance *entity.Remittance, receiptIDs []uuid.UUID,
	markPaid bool, lineFor func(rec *entity.Receipt) entity.RemittanceLine) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var receipts []entity.Receipt
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", receiptIDs).
			Find(&receipts).Error; err != nil {
			return err
		}
		if len(receipts) != len(receiptIDs) {
			return domainRepo.ErrReceiptMissing
		}

		// Validate the whole set before touching anything.
		for i := range receipts {
			if receipts[i].Status != enum.ReceiptStatusPagabile {
				return fmt.Errorf("%w: %s is %s",
					domainRepo.ErrReceiptNotPayable, receipts[i].Code, receipts[i].Status)
			}
		}

		// Locked rows carry no associations; load performers separately.
		for i := range receipts {
			if err := tx.First(&receipts[i].Performer, "id = ?", receipts[i].PerformerID).Error; err != nil {
				return err
			}
		}

		var count int64
		if err := tx.Model(&entity.Remittance{}).
			Where("year = ?", remittance.Year).
			Count(&count).Error; err != nil {
			return err
		}
		remittance.Code = fmt.Sprintf("DIST-%d-%d", remittance.Year, count+1)

		total := decimal.Zero
		lines := make([]entity.RemittanceLine, 0, len(receipts))
		for i := range receipts {
			line := lineFor(&receipts[i])
			total = total.Add(line.Amount)
			lines = append(lines, line)
		}
		remittance.LineCount = len(lines)
		remittance.TotalAmount = total

		if err := tx.Create(remittance).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].RemittanceID = remittance.ID
			if err := tx.Create(&lines[i]).Error; err != nil {
				return err
			}
		}
		remittance.Lines = lines

		now := time.Now()
		for i := range receipts {
			receipts[i].RemittanceID = &remittance.ID
			if markPaid {
				receipts[i].Status = enum.ReceiptStatusPagata
				receipts[i].PaymentDate = &now
			} else {
				receipts[i].Status = enum.ReceiptStatusInDistinta
			}
			if err := tx.Save(&receipts[i]).Error; err != nil {
				return err
			}
		}

		if markPaid {
			remittance.PaidAt = &now
			return tx.Model(remittance).Update("paid_at", now).Error
		}
		return nil
	})
}

func (r *remittanceRepository) MarkPaid(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var remittance entity.Remittance
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&remittance, "id = ?", id).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&entity.Receipt{}).
			Where("remittance_id = ? AND status = ?", id, enum.ReceiptStatusInDistinta).
			Updates(map[string]interface{}{
				"status":       enum.ReceiptStatusPagata,
				"payment_date": now,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&remittance).Update("paid_at", now).Error
	})
}

func (r *remittanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Remittance, error) {
	var remittance entity.Remittance
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&remittance, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &remittance, err
}

func (r *remittanceRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Remittance, int64, error) {
	var remittances []entity.Remittance
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Remittance{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.PerPage).
		Find(&remittances).Error
	return remittances, total, err
}
