package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/entity"
	"github.com/scenart/agency-api/pkg/pagination"
)

// Errors surfaced by remittance creation. Either condition rolls the whole
// export back.
var (
	ErrReceiptMissing    = errors.New("receipt not found")
	ErrReceiptNotPayable = errors.New("receipt is not in a payable status")
)

// RemittanceRepository defines the interface for remittance data operations
type RemittanceRepository interface {
	// CreateWithReceipts creates the remittance over the given receipts in
	// one transaction: every receipt is locked and must be in PAGABILE
	// status, otherwise nothing is exported or mutated. lineFor builds the
	// wire instruction for each included receipt. When markPaid is true the
	// receipts transition straight to PAGATA with a payment timestamp;
	// otherwise they are parked IN_DISTINTA until MarkPaid.
	CreateWithReceipts(ctx context.Context, remittance *entity.Remittance, receiptIDs []uuid.UUID,
		markPaid bool, lineFor func(r *entity.Receipt) entity.RemittanceLine) error

	// MarkPaid completes a parked remittance: all its IN_DISTINTA receipts
	// become PAGATA in the same transaction.
	MarkPaid(ctx context.Context, id uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*entity.Remittance, error)
	List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Remittance, int64, error)
}
