// Package policy holds the circulation rules that depend only on the library
// settings and the calendar: due dates, overdue fines, report status labels
// and opening hours. Nothing here touches the database.
package policy

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DueSoonWindowDays is how close a due date must be for a loan to be
// reported as "Due Soon".
const DueSoonWindowDays = 7

const (
	StatusOverdue = "Overdue"
	StatusDueSoon = "Due Soon"
	StatusActive  = "Active"
)

// Policy is a snapshot of the library settings used by fine and due-date
// calculations.
type Policy struct {
	IssuePeriodDays    int
	FinePerDay         decimal.Decimal
	MaxBooksPerMember  int
	EnableReservations bool
}

// DateOf truncates t to its calendar date, expressed as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from -> to. The result is
// negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// AddDays returns the calendar date n days after t.
func AddDays(t time.Time, n int) time.Time {
	return DateOf(t).AddDate(0, 0, n)
}

// DueDate is the default due date of a loan started on issuedAt.
func (p Policy) DueDate(issuedAt time.Time) time.Time {
	return AddDays(issuedAt, p.IssuePeriodDays)
}

// Fine computes the overdue fine for a book due on due and returned on
// returned. Returning on or before the due date costs nothing.
func (p Policy) Fine(due, returned time.Time) decimal.Decimal {
	days := DaysBetween(due, returned)
	if days <= 0 {
		return decimal.Zero
	}
	return p.FinePerDay.Mul(decimal.NewFromInt(int64(days)))
}

// Standing is the report view of an open loan.
type Standing struct {
	DaysOverdue int
	Category    string
	Label       string
}

// Classify places a loan due on due into Overdue, Due Soon or Active as of
// today. A loan without a due date is Active.
func Classify(due *time.Time, today time.Time) Standing {
	if due == nil {
		return Standing{Category: StatusActive, Label: StatusActive}
	}
	diff := DaysBetween(*due, today)
	switch {
	case diff > 0:
		return Standing{
			DaysOverdue: diff,
			Category:    StatusOverdue,
			Label:       fmt.Sprintf("%s (%d days)", StatusOverdue, diff),
		}
	case diff > -DueSoonWindowDays:
		return Standing{
			Category: StatusDueSoon,
			Label:    fmt.Sprintf("%s (%d days)", StatusDueSoon, -diff),
		}
	default:
		return Standing{Category: StatusActive, Label: StatusActive}
	}
}
