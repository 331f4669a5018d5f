package repository

import (
	"context"
	"time"

	"github.com/scenart/agency-api/internal/domain/entity"
)

// BookingRepository is the read interface over the booking domain. The
// payment engine never mutates bookings.
type BookingRepository interface {
	// ListCompletedInWindow returns completed bookings whose date falls in
	// [from, to], with client and compensation lines (performer included)
	// preloaded.
	ListCompletedInWindow(ctx context.Context, from, to time.Time) ([]entity.Booking, error)
}
