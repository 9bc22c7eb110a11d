package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AuthorType string

const (
	AuthorTypePrimary    AuthorType = "Primary"
	AuthorTypeCoAuthor   AuthorType = "Co-Author"
	AuthorTypeEditor     AuthorType = "Editor"
	AuthorTypeTranslator AuthorType = "Translator"
)

type BookCondition string

const (
	BookConditionNew  BookCondition = "New"
	BookConditionGood BookCondition = "Good"
	BookConditionFair BookCondition = "Fair"
	BookConditionPoor BookCondition = "Poor"
)

type Book struct {
	Base
	Title           string          `gorm:"size:255;not null" json:"title"`
	Subtitle        string          `gorm:"size:255" json:"subtitle,omitempty"`
	ISBN            string          `gorm:"column:isbn;size:20;index" json:"isbn,omitempty"`
	Edition         string          `gorm:"size:50" json:"edition,omitempty"`
	PublisherID     *uuid.UUID      `gorm:"type:uuid;index" json:"publisher_id,omitempty"`
	CategoryID      *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	SubcategoryID   *uuid.UUID      `gorm:"type:uuid" json:"subcategory_id,omitempty"`
	LanguageID      *uuid.UUID      `gorm:"type:uuid" json:"language_id,omitempty"`
	LocationID      *uuid.UUID      `gorm:"type:uuid" json:"location_id,omitempty"`
	RackNumber      string          `gorm:"size:50" json:"rack_number,omitempty"`
	Condition       BookCondition   `gorm:"type:varchar(10);not null;default:'Good'" json:"condition"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	TotalCopies     int             `gorm:"not null" json:"total_copies"`
	AvailableCopies int             `gorm:"not null;default:0" json:"available_copies"`
	IsReferenceOnly bool            `gorm:"not null;default:false" json:"is_reference_only"`
	Authors         []BookAuthor    `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"authors"`
}

// IsAvailable reports whether a copy can be lent out right now.
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0 && !b.IsReferenceOnly
}

type BookAuthor struct {
	Base
	BookID                 uuid.UUID       `gorm:"type:uuid;not null;index" json:"book_id"`
	AuthorID               uuid.UUID       `gorm:"type:uuid;not null;index" json:"author_id"`
	AuthorType             AuthorType      `gorm:"type:varchar(20);not null;default:'Primary'" json:"author_type"`
	ContributionPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"contribution_percentage"`
}
