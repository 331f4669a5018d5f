package service

import (
	"time"

	"github.com/scenart/agency-api/internal/domain/entity"
)

// Window is the booking date range one batch run pays.
type Window struct {
	Start  time.Time
	End    time.Time
	Year   int
	Month  int
	Period int
}

// ResolveWindow maps a run date to the half-month payment window.
//
// Runs in the first half of a month (day 1-15) pay the second half of the
// previous month (16 to end of month). Runs in the second half (day 16 on)
// pay the first half of the current month (1-15). A forced run ignores the
// half-month cadence and opens the window two months back, up to the run
// date, to catch bookings that earlier runs skipped.
func ResolveWindow(ref time.Time, forced bool) Window {
	ref = ref.In(time.Local)
	y, m, d := ref.Date()

	if forced {
		start := time.Date(y, m, 1, 0, 0, 0, 0, time.Local).AddDate(0, -2, 0)
		end := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
		return Window{
			Start:  start,
			End:    end,
			Year:   y,
			Month:  int(m),
			Period: entity.PeriodManual,
		}
	}

	if d <= 15 {
		// Second half of the previous month.
		firstOfMonth := time.Date(y, m, 1, 0, 0, 0, 0, time.Local)
		start := firstOfMonth.AddDate(0, -1, 15) // 16th of previous month
		end := firstOfMonth.AddDate(0, 0, -1)    // last day of previous month
		return Window{
			Start:  start,
			End:    end,
			Year:   start.Year(),
			Month:  int(start.Month()),
			Period: entity.PeriodSecondHalf,
		}
	}

	// First half of the current month.
	return Window{
		Start:  time.Date(y, m, 1, 0, 0, 0, 0, time.Local),
		End:    time.Date(y, m, 15, 0, 0, 0, 0, time.Local),
		Year:   y,
		Month:  int(m),
		Period: entity.PeriodFirstHalf,
	}
}

// YearMonth formats the window's accounting month as YYYY-MM, used for the
// document storage layout.
func (w Window) YearMonth() string {
	return time.Date(w.Year, time.Month(w.Month), 1, 0, 0, 0, 0, time.Local).Format("2006-01")
}
