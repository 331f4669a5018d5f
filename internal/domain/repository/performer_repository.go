package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/entity"
	"github.com/scenart/agency-api/pkg/pagination"
)

// PerformerRepository is the read interface over the performer directory.
type PerformerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Performer, error)
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Performer, int64, error)
}
