package repositories

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library_management/internal/models"
)

// Repositories bundles every repository over one database handle.
type Repositories struct {
	Authors       CatalogRepository[models.Author]
	Publishers    CatalogRepository[models.Publisher]
	Categories    CatalogRepository[models.BookCategory]
	Subcategories CatalogRepository[models.BookSubcategory]
	Languages     CatalogRepository[models.Language]
	Locations     CatalogRepository[models.LibraryLocation]
	Books         BookRepository
	Members       MemberRepository
	Transactions  TransactionRepository
	Fees          FeeCollectionRepository
	Settings      SettingsRepository
	Notifications NotificationRepository
	Reports       ReportRepository
}

func New(db *gorm.DB) Repositories {
	return Repositories{
		Authors:       NewCatalogRepository[models.Author](db),
		Publishers:    NewCatalogRepository[models.Publisher](db),
		Categories:    NewCatalogRepository[models.BookCategory](db),
		Subcategories: NewCatalogRepository[models.BookSubcategory](db),
		Languages:     NewCatalogRepository[models.Language](db),
		Locations:     NewCatalogRepository[models.LibraryLocation](db),
		Books:         NewBookRepository(db),
		Members:       NewMemberRepository(db),
		Transactions:  NewTransactionRepository(db),
		Fees:          NewFeeCollectionRepository(db),
		Settings:      NewSettingsRepository(db),
		Notifications: NewNotificationRepository(db),
		Reports:       NewReportRepository(db),
	}
}

// IsUniqueViolation reports whether err came from a unique constraint.
// PostgreSQL error code 23505 = unique_violation.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// catalog records

type CatalogRepository[T any] interface {
	Create(db *gorm.DB, record *T) error
	List(db *gorm.DB) ([]T, error)
	ListWhere(db *gorm.DB, column string, value any) ([]T, error)
	GetByID(db *gorm.DB, id uuid.UUID) (*T, error)
}

type catalogRepository[T any] struct {
	db *gorm.DB
}

func NewCatalogRepository[T any](db *gorm.DB) CatalogRepository[T] {
	return &catalogRepository[T]{db: db}
}

func (r *catalogRepository[T]) Create(db *gorm.DB, record *T) error {
	if db == nil {
		db = r.db
	}
	return db.Create(record).Error
}

func (r *catalogRepository[T]) List(db *gorm.DB) ([]T, error) {
	if db == nil {
		db = r.db
	}
	var records []T
	if err := db.Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *catalogRepository[T]) ListWhere(db *gorm.DB, column string, value any) ([]T, error) {
	if db == nil {
		db = r.db
	}
	var records []T
	if err := db.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Order("name ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *catalogRepository[T]) GetByID(db *gorm.DB, id uuid.UUID) (*T, error) {
	if db == nil {
		db = r.db
	}
	var record T
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// books

type BookRepository interface {
	Create(db *gorm.DB, book *models.Book) error
	Update(db *gorm.DB, book *models.Book) error
	ReplaceAuthors(db *gorm.DB, bookID uuid.UUID, authors []models.BookAuthor) error
	List(db *gorm.DB) ([]models.Book, error)
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Book, error)
	GetByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.Book, error)
	SetAvailableCopies(db *gorm.DB, id uuid.UUID, available int) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(db *gorm.DB, book *models.Book) error {
	if db == nil {
		db = r.db
	}
	return db.Create(book).Error
}

func (r *bookRepository) Update(db *gorm.DB, book *models.Book) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Save(book).Error
}

func (r *bookRepository) ReplaceAuthors(db *gorm.DB, bookID uuid.UUID, authors []models.BookAuthor) error {
	if db == nil {
		db = r.db
	}
	if err := db.Where("book_id = ?", bookID).Delete(&models.BookAuthor{}).Error; err != nil {
		return err
	}
	if len(authors) == 0 {
		return nil
	}
	for i := range authors {
		authors[i].BookID = bookID
	}
	return db.Create(&authors).Error
}

func (r *bookRepository) List(db *gorm.DB) ([]models.Book, error) {
	if db == nil {
		db = r.db
	}
	var books []models.Book
	if err := db.Preload("Authors").Order("title ASC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	var book models.Book
	if err := db.Preload("Authors").First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) GetByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	var book models.Book
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&book, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) SetAvailableCopies(db *gorm.DB, id uuid.UUID, available int) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.Book{}).
		Where("id = ?", id).
		UpdateColumn("available_copies", available).
		Error
}
