package service

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/entity"
	"github.com/scenart/agency-api/internal/domain/enum"
	"github.com/scenart/agency-api/internal/domain/repository"
	"github.com/scenart/agency-api/pkg/apperror"
	"github.com/scenart/agency-api/pkg/pagination"
	"github.com/scenart/agency-api/pkg/storage"
	"go.uber.org/zap"
)

// ReceiptService covers the back-office side of the receipt lifecycle:
// listing, reminders, cancellation, expiry and document retrieval.
type ReceiptService struct {
	receiptRepo repository.ReceiptRepository
	mailer      Mailer
	store       storage.Store
	tokenTTL    time.Duration
	logger      *zap.Logger
}

// NewReceiptService creates a new receipt service
func NewReceiptService(
	receiptRepo repository.ReceiptRepository,
	mailer Mailer,
	store storage.Store,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *ReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptService{
		receiptRepo: receiptRepo,
		mailer:      mailer,
		store:       store,
		tokenTTL:    tokenTTL,
		logger:      logger,
	}
}

// ListReceiptsInput filters the receipt listing.
type ListReceiptsInput struct {
	Pagination  *pagination.PaginationParams
	Status      *enum.ReceiptStatus
	BatchID     *uuid.UUID
	PerformerID *uuid.UUID
	Year        *int
	Search      string
}

// ListReceipts returns receipts matching the filter, newest first.
func (s *ReceiptService) ListReceipts(ctx context.Context, input *ListReceiptsInput) ([]entity.Receipt, *pagination.Pagination, error) {
	params := input.Pagination
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	receipts, total, err := s.receiptRepo.List(ctx, &repository.ReceiptFilterParams{
		Pagination:  params,
		Status:      input.Status,
		BatchID:     input.BatchID,
		PerformerID: input.PerformerID,
		Year:        input.Year,
		Search:      input.Search,
	})
	if err != nil {
		return nil, nil, err
	}
	return receipts, pagination.NewPagination(params.Page, params.PerPage, total), nil
}

// GetReceipt returns one receipt by ID.
func (s *ReceiptService) GetReceipt(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return receipt, nil
}

// Remind re-sends the signature link for an unsigned receipt and marks it
// SOLLECITATA. The token lifetime restarts so the resent link works.
func (s *ReceiptService) Remind(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt.Status.IsSigned() {
		return nil, apperror.NewConflictError("Receipt has already been signed")
	}
	if receipt.Status == enum.ReceiptStatusAnnullata {
		return nil, apperror.NewConflictError("Receipt has been cancelled")
	}

	receipt.Status = enum.ReceiptStatusSollecitata
	receipt.TokenExpiresAt = time.Now().Add(s.tokenTTL)
	if err := s.receiptRepo.Update(ctx, receipt); err != nil {
		return nil, err
	}

	if err := s.mailer.SendSignatureReminder(
		receipt.Performer.Email,
		receipt.Performer.FullName(),
		receipt.Code,
		receipt.SignatureToken,
	); err != nil {
		s.logger.Warn("signature reminder email failed",
			zap.String("receipt", receipt.Code), zap.Error(err))
	}

	return receipt, nil
}

// Cancel voids an unsigned receipt. The progressive number stays burned;
// cancellation is a status, not a deletion.
func (s *ReceiptService) Cancel(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt.Status.IsSigned() {
		return nil, apperror.NewConflictError("A signed receipt cannot be cancelled")
	}
	if receipt.Status == enum.ReceiptStatusAnnullata {
		return receipt, nil
	}

	receipt.Status = enum.ReceiptStatusAnnullata
	if err := s.receiptRepo.Update(ctx, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// ExpireOverdue sweeps unsigned receipts whose signature link has lapsed
// into SCADUTA and reports how many changed.
func (s *ReceiptService) ExpireOverdue(ctx context.Context) (int64, error) {
	count, err := s.receiptRepo.MarkExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("expired overdue receipts", zap.Int64("count", count))
	}
	return count, nil
}

// Document returns the stored receipt PDF.
func (s *ReceiptService) Document(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	receipt, err := s.GetReceipt(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if receipt.DocumentPath == nil {
		return nil, "", apperror.NewNotFoundError("Receipt document")
	}
	data, err := s.store.Read(*receipt.DocumentPath)
	if err != nil {
		return nil, "", apperror.NewNotFoundError("Receipt document")
	}
	return data, filepath.Base(*receipt.DocumentPath), nil
}
