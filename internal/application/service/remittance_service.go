package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/entity"
	"github.com/scenart/agency-api/internal/domain/repository"
	"github.com/scenart/agency-api/pkg/apperror"
	"github.com/scenart/agency-api/pkg/pagination"
	"go.uber.org/zap"
)

// RemittanceService groups payable receipts into bank-transfer remittances.
type RemittanceService struct {
	remittanceRepo repository.RemittanceRepository
	logger         *zap.Logger
}

// NewRemittanceService creates a new remittance service
func NewRemittanceService(remittanceRepo repository.RemittanceRepository, logger *zap.Logger) *RemittanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemittanceService{
		remittanceRepo: remittanceRepo,
		logger:         logger,
	}
}

// CreateRemittanceInput selects the receipts to export.
type CreateRemittanceInput struct {
	ReceiptIDs []uuid.UUID `json:"receipt_ids" binding:"required,min=1"`
	// MarkPaid settles the receipts in the same transaction. When false the
	// receipts are parked IN_DISTINTA until MarkPaid is called.
	MarkPaid *bool `json:"mark_paid"`
}

// Create builds a remittance over the given receipts. All receipts must be
// payable; one bad receipt fails the whole export without side effects.
func (s *RemittanceService) Create(ctx context.Context, input *CreateRemittanceInput) (*entity.Remittance, error) {
	markPaid := true
	if input.MarkPaid != nil {
		markPaid = *input.MarkPaid
	}

	remittance := &entity.Remittance{
		Year: time.Now().Year(),
	}

	err := s.remittanceRepo.CreateWithReceipts(ctx, remittance, input.ReceiptIDs, markPaid,
		func(r *entity.Receipt) entity.RemittanceLine {
			return entity.RemittanceLine{
				ReceiptID:     r.ID,
				PerformerName: r.Performer.FullName(),
				IBAN:          r.Performer.IBAN,
				Amount:        r.TotalPayable,
				Description:   fmt.Sprintf("Ricevuta %s - %s", r.Code, r.Performer.FullName()),
			}
		})
	if err != nil {
		if errors.Is(err, repository.ErrReceiptMissing) {
			return nil, apperror.NewNotFoundError("Receipt")
		}
		if errors.Is(err, repository.ErrReceiptNotPayable) {
			return nil, apperror.NewUnprocessableError(err.Error())
		}
		return nil, err
	}

	s.logger.Info("remittance created",
		zap.String("code", remittance.Code),
		zap.Int("lines", remittance.LineCount),
		zap.String("total", remittance.TotalAmount.StringFixed(2)),
		zap.Bool("mark_paid", markPaid))

	return remittance, nil
}

// MarkPaid settles a parked remittance: its IN_DISTINTA receipts become
// PAGATA.
func (s *RemittanceService) MarkPaid(ctx context.Context, id uuid.UUID) (*entity.Remittance, error) {
	remittance, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if remittance.PaidAt != nil {
		return nil, apperror.NewConflictError("Remittance has already been paid")
	}
	if err := s.remittanceRepo.MarkPaid(ctx, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Get returns one remittance with its lines.
func (s *RemittanceService) Get(ctx context.Context, id uuid.UUID) (*entity.Remittance, error) {
	remittance, err := s.remittanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if remittance == nil {
		return nil, apperror.NewNotFoundError("Remittance")
	}
	return remittance, nil
}

// List returns the remittance history, newest first.
func (s *RemittanceService) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Remittance, *pagination.Pagination, error) {
	params.Validate()
	remittances, total, err := s.remittanceRepo.List(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return remittances, pagination.NewPagination(params.Page, params.PerPage, total), nil
}

// File renders the remittance as the CSV handed to the bank.
func (s *RemittanceService) File(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	remittance, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write([]string{"Beneficiario", "IBAN", "Importo", "Causale"}); err != nil {
		return nil, "", err
	}
	for _, line := range remittance.Lines {
		if err := w.Write([]string{
			line.PerformerName,
			line.IBAN,
			line.Amount.StringFixed(2),
			line.Description,
		}); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), remittance.Code + ".csv", nil
}
