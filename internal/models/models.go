package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocStatus is the lifecycle state of a submittable document.
type DocStatus int

const (
	DocStatusDraft     DocStatus = 0
	DocStatusSubmitted DocStatus = 1
	DocStatusCancelled DocStatus = 2
)

func (s DocStatus) String() string {
	switch s {
	case DocStatusDraft:
		return "Draft"
	case DocStatusSubmitted:
		return "Submitted"
	case DocStatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Base carries the identity and audit columns shared by every record.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a random UUID when the caller did not set one.
func (b *Base) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model, in dependency order, for auto-migration.
func All() []any {
	return []any{
		&Author{},
		&Publisher{},
		&BookCategory{},
		&BookSubcategory{},
		&Language{},
		&LibraryLocation{},
		&Book{},
		&BookAuthor{},
		&LibraryMember{},
		&BookTransaction{},
		&FeeCollection{},
		&FeeCollectionFineDetail{},
		&LibrarySettings{},
		&LibraryHours{},
		&Notification{},
	}
}
