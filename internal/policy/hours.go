package policy

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"library_management/internal/models"
)

// IsOpenAt reports whether the weekly schedule has the library open at t
// (in t's own location). Days missing from the schedule count as closed.
func IsOpenAt(hours []models.LibraryHours, t time.Time) bool {
	day := t.Weekday().String()
	tod := datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0)

	for _, h := range hours {
		if !strings.EqualFold(h.DayOfWeek, day) {
			continue
		}
		if !h.IsOpen || h.OpeningTime == nil || h.ClosingTime == nil {
			return false
		}
		if tod < *h.OpeningTime || tod >= *h.ClosingTime {
			return false
		}
		if h.BreakStartTime != nil && h.BreakEndTime != nil &&
			tod >= *h.BreakStartTime && tod < *h.BreakEndTime {
			return false
		}
		return true
	}
	return false
}

// ValidWeekday reports whether name is an English weekday name.
func ValidWeekday(name string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return true
		}
	}
	return false
}
