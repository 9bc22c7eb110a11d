package models

import (
	"time"

	"github.com/google/uuid"
)

type Author struct {
	Base
	Name        string     `gorm:"size:255;not null" json:"name"`
	Biography   string     `gorm:"type:text" json:"biography,omitempty"`
	Nationality string     `gorm:"size:100" json:"nationality,omitempty"`
	BirthDate   *time.Time `gorm:"type:date" json:"birth_date,omitempty"`
	DeathDate   *time.Time `gorm:"type:date" json:"death_date,omitempty"`
}

type Publisher struct {
	Base
	Name    string `gorm:"size:255;not null" json:"name"`
	Address string `gorm:"type:text" json:"address,omitempty"`
	Website string `gorm:"size:255" json:"website,omitempty"`
}

type BookCategory struct {
	Base
	Name        string `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

type BookSubcategory struct {
	Base
	CategoryID  uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
}

type Language struct {
	Base
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Code string `gorm:"size:10" json:"code,omitempty"`
}

type LibraryLocation struct {
	Base
	Name        string `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Floor       string `gorm:"size:50" json:"floor,omitempty"`
	Section     string `gorm:"size:100" json:"section,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

// Named is implemented by every catalog record; the name is its only
// mandatory field.
type Named interface {
	DisplayName() string
}

func (a Author) DisplayName() string          { return a.Name }
func (p Publisher) DisplayName() string       { return p.Name }
func (c BookCategory) DisplayName() string    { return c.Name }
func (s BookSubcategory) DisplayName() string { return s.Name }
func (l Language) DisplayName() string        { return l.Name }
func (l LibraryLocation) DisplayName() string { return l.Name }
