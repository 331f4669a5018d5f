package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/entity"
	"github.com/scenart/agency-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// PaymentBatchRepository defines the interface for payment batch data operations
type PaymentBatchRepository interface {
	// Create persists a new batch, assigning its per-year progressive code
	// (BP-<year>-<seq>) inside the same transaction.
	Create(ctx context.Context, batch *entity.PaymentBatch) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.PaymentBatch, error)
	// UpdateAggregates sets the receipt count and total amount after receipt
	// generation completes. The batch is otherwise immutable.
	UpdateAggregates(ctx context.Context, id uuid.UUID, count int, total decimal.Decimal) error
	List(ctx context.Context, params *pagination.PaginationParams) ([]entity.PaymentBatch, int64, error)
}
