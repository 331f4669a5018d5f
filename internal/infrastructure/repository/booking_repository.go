package repository

import (
	"context"
	"time"

	"github.com/scenart/agency-api/internal/domain/entity"
	"github.com/scenart/agency-api/internal/domain/enum"
	domainRepo "github.com/scenart/agency-api/internal/domain/repository"
	"gorm.io/gorm"
)

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) domainRepo.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) ListCompletedInWindow(ctx context.Context, from, to time.Time) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Lines").
		Preload("Lines.Performer").
		Where("status = ? AND date >= ? AND date <= ?", enum.BookingStatusCompleted, from, to).
		Order("date ASC").
		Find(&bookings).Error
	return bookings, err
}
