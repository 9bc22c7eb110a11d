package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SettingsID is the primary key of the single LibrarySettings row.
const SettingsID uint = 1

type LibrarySettings struct {
	ID                 uint            `gorm:"primaryKey" json:"-"`
	LibraryName        string          `gorm:"size:255;not null" json:"library_name"`
	MaxBooksPerMember  int             `gorm:"not null" json:"max_books_per_member"`
	DefaultIssuePeriod int             `gorm:"not null" json:"default_issue_period"`
	FinePerDay         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"fine_per_day"`
	EnableReservations bool            `gorm:"not null" json:"enable_reservations"`
	AutoExtendEnabled  bool            `gorm:"not null;default:false" json:"auto_extend_enabled"`
	EmailNotifications bool            `gorm:"not null" json:"email_notifications"`
	MembershipFees     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"membership_fees"`
	Hours              []LibraryHours  `gorm:"foreignKey:SettingsID;constraint:OnDelete:CASCADE" json:"library_hours"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type LibraryHours struct {
	ID             uint            `gorm:"primaryKey" json:"-"`
	SettingsID     uint            `gorm:"not null;index" json:"-"`
	DayOfWeek      string          `gorm:"type:varchar(10);not null" json:"day_of_week"`
	IsOpen         bool            `gorm:"not null;default:false" json:"is_open"`
	OpeningTime    *datatypes.Time `json:"opening_time,omitempty"`
	ClosingTime    *datatypes.Time `json:"closing_time,omitempty"`
	BreakStartTime *datatypes.Time `json:"break_start_time,omitempty"`
	BreakEndTime   *datatypes.Time `json:"break_end_time,omitempty"`
}
