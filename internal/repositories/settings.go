package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library_management/internal/models"
)

type SettingsRepository interface {
	Get(db *gorm.DB) (*models.LibrarySettings, error)
	Save(db *gorm.DB, settings *models.LibrarySettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(db *gorm.DB) (*models.LibrarySettings, error) {
	if db == nil {
		db = r.db
	}
	var settings models.LibrarySettings
	err := db.
		Preload("Hours", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		First(&settings, "id = ?", models.SettingsID).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Save upserts the singleton row and replaces its opening hours.
func (r *settingsRepository) Save(db *gorm.DB, settings *models.LibrarySettings) error {
	if db == nil {
		db = r.db
	}
	settings.ID = models.SettingsID
	if err := db.Omit(clause.Associations).Save(settings).Error; err != nil {
		return err
	}
	if err := db.Where("settings_id = ?", models.SettingsID).Delete(&models.LibraryHours{}).Error; err != nil {
		return err
	}
	if len(settings.Hours) == 0 {
		return nil
	}
	for i := range settings.Hours {
		settings.Hours[i].ID = 0
		settings.Hours[i].SettingsID = models.SettingsID
	}
	return db.Create(&settings.Hours).Error
}
