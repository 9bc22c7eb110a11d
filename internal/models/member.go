package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type MembershipStatus string

const (
	MembershipStatusActive    MembershipStatus = "Active"
	MembershipStatusSuspended MembershipStatus = "Suspended"
	MembershipStatusExpired   MembershipStatus = "Expired"
	MembershipStatusCancelled MembershipStatus = "Cancelled"
)

func (s MembershipStatus) Valid() bool {
	switch s {
	case MembershipStatusActive, MembershipStatusSuspended, MembershipStatusExpired, MembershipStatusCancelled:
		return true
	}
	return false
}

type MemberType string

const (
	MemberTypeStudent  MemberType = "Student"
	MemberTypeFaculty  MemberType = "Faculty"
	MemberTypeStaff    MemberType = "Staff"
	MemberTypeExternal MemberType = "External"
)

func (t MemberType) Valid() bool {
	switch t {
	case MemberTypeStudent, MemberTypeFaculty, MemberTypeStaff, MemberTypeExternal:
		return true
	}
	return false
}

type LibraryMember struct {
	Base
	FirstName           string           `gorm:"size:100;not null" json:"first_name"`
	LastName            string           `gorm:"size:100;not null" json:"last_name"`
	Email               *string          `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	Phone               string           `gorm:"size:30" json:"phone,omitempty"`
	Address             string           `gorm:"type:text" json:"address,omitempty"`
	MemberType          MemberType       `gorm:"type:varchar(20);not null;default:'Student'" json:"member_type"`
	MembershipStatus    MembershipStatus `gorm:"type:varchar(20);not null;default:'Active';index" json:"membership_status"`
	MembershipStartDate *time.Time       `gorm:"type:date" json:"membership_start_date"`
	MembershipEndDate   *time.Time       `gorm:"type:date" json:"membership_end_date"`
	MaxBooksAllowed     int              `gorm:"not null;default:0" json:"max_books_allowed"`
	CurrentBooksIssued  int              `gorm:"not null;default:0" json:"current_books_issued"`
	TotalFines          decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0" json:"total_fines"`
}

func (m *LibraryMember) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// EmailAddress returns the member's email or "" when none is on file.
func (m *LibraryMember) EmailAddress() string {
	if m.Email == nil {
		return ""
	}
	return *m.Email
}
