package repositories

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library_management/internal/models"
)

type MemberRepository interface {
	Create(db *gorm.DB, member *models.LibraryMember) error
	Update(db *gorm.DB, member *models.LibraryMember) error
	List(db *gorm.DB) ([]models.LibraryMember, error)
	GetByID(db *gorm.DB, id uuid.UUID) (*models.LibraryMember, error)
	SetStats(db *gorm.DB, id uuid.UUID, booksIssued int, totalFines decimal.Decimal) error
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(db *gorm.DB, member *models.LibraryMember) error {
	if db == nil {
		db = r.db
	}
	return db.Create(member).Error
}

func (r *memberRepository) Update(db *gorm.DB, member *models.LibraryMember) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Save(member).Error
}

func (r *memberRepository) List(db *gorm.DB) ([]models.LibraryMember, error) {
	if db == nil {
		db = r.db
	}
	var members []models.LibraryMember
	if err := db.Order("last_name ASC, first_name ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.LibraryMember, error) {
	if db == nil {
		db = r.db
	}
	var member models.LibraryMember
	if err := db.First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) SetStats(db *gorm.DB, id uuid.UUID, booksIssued int, totalFines decimal.Decimal) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.LibraryMember{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"current_books_issued": booksIssued,
			"total_fines":          totalFines,
		}).Error
}
