package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/entity"
	"github.com/scenart/agency-api/internal/domain/enum"
	"github.com/scenart/agency-api/pkg/pagination"
)

// ReceiptFilterParams filters receipt listings
type ReceiptFilterParams struct {
	Pagination  *pagination.PaginationParams
	Status      *enum.ReceiptStatus
	BatchID     *uuid.UUID
	PerformerID *uuid.UUID
	Year        *int
	Search      string
}

// ReceiptRepository defines the interface for receipt data operations
type ReceiptRepository interface {
	// CreateNumbered creates the receipt and draws its progressive sequence
	// number in one transaction: the (performer, year) counter row is locked,
	// incremented, and the number handed to numbered so the caller can fill
	// in sequence-derived fields before the insert.
	CreateNumbered(ctx context.Context, receipt *entity.Receipt, numbered func(seq int)) error

	GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error)
	GetByToken(ctx context.Context, token string) (*entity.Receipt, error)
	List(ctx context.Context, params *ReceiptFilterParams) ([]entity.Receipt, int64, error)
	Update(ctx context.Context, receipt *entity.Receipt) error

	// MutateByToken loads the receipt by signature token with a row lock,
	// applies mutate, and saves — all in one transaction. Returning an error
	// from mutate rolls everything back. This closes the race between two
	// concurrent submissions for the same token.
	MutateByToken(ctx context.Context, token string, mutate func(r *entity.Receipt) error) (*entity.Receipt, error)

	// MarkExpired transitions unsigned receipts whose token expiry has
	// passed to SCADUTA, returning how many were affected.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}
