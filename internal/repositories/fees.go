package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library_management/internal/models"
)

type FeeCollectionRepository interface {
	Create(db *gorm.DB, fee *models.FeeCollection) error
	Update(db *gorm.DB, fee *models.FeeCollection) error
	ReplaceFineDetails(db *gorm.DB, feeID uuid.UUID, details []models.FeeCollectionFineDetail) error
	GetByID(db *gorm.DB, id uuid.UUID) (*models.FeeCollection, error)
	GetByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.FeeCollection, error)
}

type feeCollectionRepository struct {
	db *gorm.DB
}

func NewFeeCollectionRepository(db *gorm.DB) FeeCollectionRepository {
	return &feeCollectionRepository{db: db}
}

func (r *feeCollectionRepository) Create(db *gorm.DB, fee *models.FeeCollection) error {
	if db == nil {
		db = r.db
	}
	return db.Create(fee).Error
}

func (r *feeCollectionRepository) Update(db *gorm.DB, fee *models.FeeCollection) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Save(fee).Error
}

func (r *feeCollectionRepository) ReplaceFineDetails(db *gorm.DB, feeID uuid.UUID, details []models.FeeCollectionFineDetail) error {
	if db == nil {
		db = r.db
	}
	if err := db.Where("fee_collection_id = ?", feeID).Delete(&models.FeeCollectionFineDetail{}).Error; err != nil {
		return err
	}
	if len(details) == 0 {
		return nil
	}
	for i := range details {
		details[i].ID = uuid.Nil
		details[i].FeeCollectionID = feeID
	}
	return db.Create(&details).Error
}

func (r *feeCollectionRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.FeeCollection, error) {
	if db == nil {
		db = r.db
	}
	var fee models.FeeCollection
	if err := db.Preload("FineDetails").First(&fee, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fee, nil
}

func (r *feeCollectionRepository) GetByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.FeeCollection, error) {
	if db == nil {
		db = r.db
	}
	var fee models.FeeCollection
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&fee, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if err := db.Where("fee_collection_id = ?", id).
		Order("created_at ASC").
		Find(&fee.FineDetails).Error; err != nil {
		return nil, err
	}
	return &fee, nil
}
