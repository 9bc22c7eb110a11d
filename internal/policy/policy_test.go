package policy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"library_management/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFine(t *testing.T) {
	p := Policy{IssuePeriodDays: 14, FinePerDay: decimal.NewFromFloat(2.0)}

	tests := []struct {
		name     string
		due      time.Time
		returned time.Time
		want     decimal.Decimal
	}{
		{"five days late", date(2024, 1, 15), date(2024, 1, 20), decimal.NewFromInt(10)},
		{"on due date", date(2024, 1, 15), date(2024, 1, 15), decimal.Zero},
		{"early", date(2024, 1, 15), date(2024, 1, 10), decimal.Zero},
		{"one day late", date(2024, 1, 15), date(2024, 1, 16), decimal.NewFromInt(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Fine(tt.due, tt.returned)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestFineIgnoresTimeOfDay(t *testing.T) {
	p := Policy{FinePerDay: decimal.NewFromInt(3)}
	due := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
	returned := time.Date(2024, 3, 2, 0, 1, 0, 0, time.UTC)

	assert.True(t, decimal.NewFromInt(3).Equal(p.Fine(due, returned)))
}

func TestDueDate(t *testing.T) {
	p := Policy{IssuePeriodDays: 14}
	issued := time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, date(2024, 1, 15), p.DueDate(issued))
}

func TestClassify(t *testing.T) {
	today := date(2024, 2, 10)

	overdue := date(2024, 2, 5)
	s := Classify(&overdue, today)
	assert.Equal(t, 5, s.DaysOverdue)
	assert.Equal(t, StatusOverdue, s.Category)
	assert.Equal(t, "Overdue (5 days)", s.Label)

	dueToday := today
	s = Classify(&dueToday, today)
	assert.Equal(t, 0, s.DaysOverdue)
	assert.Equal(t, "Due Soon (0 days)", s.Label)

	dueSoon := date(2024, 2, 13)
	s = Classify(&dueSoon, today)
	assert.Equal(t, StatusDueSoon, s.Category)
	assert.Equal(t, "Due Soon (3 days)", s.Label)

	far := date(2024, 2, 17)
	s = Classify(&far, today)
	assert.Equal(t, StatusActive, s.Category)
	assert.Equal(t, "Active", s.Label)

	s = Classify(nil, today)
	assert.Equal(t, StatusActive, s.Category)
	assert.Zero(t, s.DaysOverdue)
}

func TestIsOpenAt(t *testing.T) {
	open := datatypes.NewTime(9, 0, 0, 0)
	closing := datatypes.NewTime(18, 0, 0, 0)
	breakStart := datatypes.NewTime(13, 0, 0, 0)
	breakEnd := datatypes.NewTime(14, 0, 0, 0)
	hours := []models.LibraryHours{
		{DayOfWeek: "Monday", IsOpen: true, OpeningTime: &open, ClosingTime: &closing, BreakStartTime: &breakStart, BreakEndTime: &breakEnd},
		{DayOfWeek: "Sunday", IsOpen: false},
	}

	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, IsOpenAt(hours, monday.Add(10*time.Hour)))
	assert.False(t, IsOpenAt(hours, monday.Add(8*time.Hour)))
	assert.False(t, IsOpenAt(hours, monday.Add(13*time.Hour+30*time.Minute)))
	assert.False(t, IsOpenAt(hours, monday.Add(18*time.Hour)))
	assert.False(t, IsOpenAt(hours, date(2023, 12, 31).Add(10*time.Hour)))
	assert.False(t, IsOpenAt(hours, date(2024, 1, 2).Add(10*time.Hour)))
}

func TestValidWeekday(t *testing.T) {
	assert.True(t, ValidWeekday("monday"))
	assert.True(t, ValidWeekday("Sunday"))
	assert.False(t, ValidWeekday("Funday"))
}
