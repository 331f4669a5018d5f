package service

import (
	"testing"
	"time"

	"github.com/scenart/agency-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestResolveWindow(t *testing.T) {
	tests := []struct {
		name       string
		ref        time.Time
		wantStart  time.Time
		wantEnd    time.Time
		wantYear   int
		wantMonth  int
		wantPeriod int
	}{
		{
			name:       "first day of month pays previous second half",
			ref:        date(2025, time.March, 1),
			wantStart:  date(2025, time.February, 16),
			wantEnd:    date(2025, time.February, 28),
			wantYear:   2025,
			wantMonth:  2,
			wantPeriod: entity.PeriodSecondHalf,
		},
		{
			name:       "fifteenth still pays previous second half",
			ref:        date(2025, time.March, 15),
			wantStart:  date(2025, time.February, 16),
			wantEnd:    date(2025, time.February, 28),
			wantYear:   2025,
			wantMonth:  2,
			wantPeriod: entity.PeriodSecondHalf,
		},
		{
			name:       "sixteenth pays current first half",
			ref:        date(2025, time.March, 16),
			wantStart:  date(2025, time.March, 1),
			wantEnd:    date(2025, time.March, 15),
			wantYear:   2025,
			wantMonth:  3,
			wantPeriod: entity.PeriodFirstHalf,
		},
		{
			name:       "end of month pays current first half",
			ref:        date(2025, time.March, 31),
			wantStart:  date(2025, time.March, 1),
			wantEnd:    date(2025, time.March, 15),
			wantYear:   2025,
			wantMonth:  3,
			wantPeriod: entity.PeriodFirstHalf,
		},
		{
			name:       "january run reaches into december of previous year",
			ref:        date(2025, time.January, 10),
			wantStart:  date(2024, time.December, 16),
			wantEnd:    date(2024, time.December, 31),
			wantYear:   2024,
			wantMonth:  12,
			wantPeriod: entity.PeriodSecondHalf,
		},
		{
			name:       "leap february end resolves correctly",
			ref:        date(2024, time.March, 5),
			wantStart:  date(2024, time.February, 16),
			wantEnd:    date(2024, time.February, 29),
			wantYear:   2024,
			wantMonth:  2,
			wantPeriod: entity.PeriodSecondHalf,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			win := ResolveWindow(tt.ref, false)
			assert.Equal(t, tt.wantStart, win.Start)
			assert.Equal(t, tt.wantEnd, win.End)
			assert.Equal(t, tt.wantYear, win.Year)
			assert.Equal(t, tt.wantMonth, win.Month)
			assert.Equal(t, tt.wantPeriod, win.Period)
		})
	}
}

func TestResolveWindowForced(t *testing.T) {
	win := ResolveWindow(date(2025, time.March, 20), true)

	assert.Equal(t, date(2025, time.January, 1), win.Start)
	assert.Equal(t, date(2025, time.March, 20), win.End)
	assert.Equal(t, entity.PeriodManual, win.Period)
	assert.Equal(t, 2025, win.Year)
	assert.Equal(t, 3, win.Month)
}

func TestWindowYearMonth(t *testing.T) {
	win := ResolveWindow(date(2025, time.March, 1), false)
	assert.Equal(t, "2025-02", win.YearMonth())
}
