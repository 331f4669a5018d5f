package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/entity"
	"github.com/scenart/agency-api/internal/domain/enum"
	"github.com/scenart/agency-api/internal/domain/repository"
	"github.com/scenart/agency-api/pkg/apperror"
	"github.com/scenart/agency-api/pkg/pagination"
)

// PerformerService is the read side of the performer directory the batch
// engine draws from. Profile data is mastered elsewhere; here it is only
// consulted, mainly to check who would be excluded from the next run.
type PerformerService struct {
	performerRepo repository.PerformerRepository
}

// NewPerformerService creates a new performer service
func NewPerformerService(performerRepo repository.PerformerRepository) *PerformerService {
	return &PerformerService{performerRepo: performerRepo}
}

// PerformerProfile pairs a performer with their payability status.
type PerformerProfile struct {
	entity.Performer
	Payable       bool     `json:"payable"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

func profileOf(p entity.Performer) PerformerProfile {
	missing := p.MissingProfileFields()
	return PerformerProfile{
		Performer:     p,
		Payable:       p.ContractType == enum.ContractTypeOccasional && len(missing) == 0,
		MissingFields: missing,
	}
}

// Get returns one performer with their profile completeness.
func (s *PerformerService) Get(ctx context.Context, id uuid.UUID) (*PerformerProfile, error) {
	performer, err := s.performerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if performer == nil {
		return nil, apperror.NewNotFoundError("Performer")
	}
	profile := profileOf(*performer)
	return &profile, nil
}

// List returns the performer directory, optionally filtered by a name or tax
// code search.
func (s *PerformerService) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]PerformerProfile, *pagination.Pagination, error) {
	params.Validate()
	performers, total, err := s.performerRepo.List(ctx, params, search)
	if err != nil {
		return nil, nil, err
	}
	profiles := make([]PerformerProfile, 0, len(performers))
	for _, p := range performers {
		profiles = append(profiles, profileOf(p))
	}
	return profiles, pagination.NewPagination(params.Page, params.PerPage, total), nil
}
