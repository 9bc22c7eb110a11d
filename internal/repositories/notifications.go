package repositories

import (
	"gorm.io/gorm"

	"library_management/internal/models"
)

type NotificationRepository interface {
	Create(db *gorm.DB, n *models.Notification) error
	ListByRecipient(db *gorm.DB, recipient string) ([]models.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(db *gorm.DB, n *models.Notification) error {
	if db == nil {
		db = r.db
	}
	return db.Create(n).Error
}

func (r *notificationRepository) ListByRecipient(db *gorm.DB, recipient string) ([]models.Notification, error) {
	if db == nil {
		db = r.db
	}
	var out []models.Notification
	if err := db.Where("recipient = ?", recipient).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
