package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/entity"
	domainRepo "github.com/scenart/agency-api/internal/domain/repository"
	"github.com/scenart/agency-api/pkg/pagination"
	"gorm.io/gorm"
)

type performerRepository struct {
	db *gorm.DB
}

// NewPerformerRepository creates a new performer repository
func NewPerformerRepository(db *gorm.DB) domainRepo.PerformerRepository {
	return &performerRepository{db: db}
}

func (r *performerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Performer, error) {
	var performer entity.Performer
	err := r.db.WithContext(ctx).First(&performer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &performer, nil
}

func (r *performerRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Performer, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Performer{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR stage_name ILIKE ? OR tax_code ILIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var performers []entity.Performer
	err := query.
		Order("last_name ASC, first_name ASC").
		Offset(params.Offset()).
		Limit(params.PerPage).
		Find(&performers).Error
	return performers, total, err
}
