package repositories

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library_management/internal/models"
)

// TransactionFilter narrows transaction queries; nil fields match everything.
type TransactionFilter struct {
	MemberID *uuid.UUID
	BookID   *uuid.UUID
}

func (f TransactionFilter) apply(db *gorm.DB) *gorm.DB {
	if f.MemberID != nil {
		db = db.Where("member_id = ?", *f.MemberID)
	}
	if f.BookID != nil {
		db = db.Where("book_id = ?", *f.BookID)
	}
	return db
}

type TransactionRepository interface {
	Create(db *gorm.DB, txn *models.BookTransaction) error
	Update(db *gorm.DB, txn *models.BookTransaction) error
	GetByID(db *gorm.DB, id uuid.UUID) (*models.BookTransaction, error)
	GetByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.BookTransaction, error)
	List(db *gorm.DB, filter TransactionFilter) ([]models.BookTransaction, error)
	ListOpenIssues(db *gorm.DB, filter TransactionFilter) ([]models.BookTransaction, error)
	CountOpenIssues(db *gorm.DB, filter TransactionFilter) (int64, error)
	SumUnpaidFines(db *gorm.DB, memberID uuid.UUID) (decimal.Decimal, error)
	ListUnpaidFines(db *gorm.DB, memberID uuid.UUID) ([]models.BookTransaction, error)
	SetFinePaid(db *gorm.DB, ids []uuid.UUID, paid bool) error
	CountSubmittedAgainst(db *gorm.DB, againstID uuid.UUID) (int64, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(db *gorm.DB, txn *models.BookTransaction) error {
	if db == nil {
		db = r.db
	}
	return db.Create(txn).Error
}

func (r *transactionRepository) Update(db *gorm.DB, txn *models.BookTransaction) error {
	if db == nil {
		db = r.db
	}
	return db.Save(txn).Error
}

func (r *transactionRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.BookTransaction, error) {
	if db == nil {
		db = r.db
	}
	var txn models.BookTransaction
	if err := db.First(&txn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepository) GetByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.BookTransaction, error) {
	if db == nil {
		db = r.db
	}
	var txn models.BookTransaction
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&txn, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepository) List(db *gorm.DB, filter TransactionFilter) ([]models.BookTransaction, error) {
	if db == nil {
		db = r.db
	}
	var txns []models.BookTransaction
	if err := filter.apply(db).
		Order("transaction_date DESC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *transactionRepository) openIssues(db *gorm.DB, filter TransactionFilter) *gorm.DB {
	return filter.apply(db.Model(&models.BookTransaction{})).
		Where("transaction_type = ? AND doc_status = ? AND return_date IS NULL",
			models.TransactionTypeIssue, models.DocStatusSubmitted)
}

func (r *transactionRepository) ListOpenIssues(db *gorm.DB, filter TransactionFilter) ([]models.BookTransaction, error) {
	if db == nil {
		db = r.db
	}
	var txns []models.BookTransaction
	if err := r.openIssues(db, filter).
		Order("due_date ASC, transaction_date ASC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *transactionRepository) CountOpenIssues(db *gorm.DB, filter TransactionFilter) (int64, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	if err := r.openIssues(db, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *transactionRepository) unpaidFines(db *gorm.DB, memberID uuid.UUID) *gorm.DB {
	return db.Model(&models.BookTransaction{}).
		Where("member_id = ? AND doc_status = ? AND fine_paid = ?",
			memberID, models.DocStatusSubmitted, false)
}

func (r *transactionRepository) SumUnpaidFines(db *gorm.DB, memberID uuid.UUID) (decimal.Decimal, error) {
	if db == nil {
		db = r.db
	}
	var result struct {
		Total decimal.Decimal
	}
	if err := r.unpaidFines(db, memberID).
		Select("COALESCE(SUM(fine_amount), 0) AS total").
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (r *transactionRepository) ListUnpaidFines(db *gorm.DB, memberID uuid.UUID) ([]models.BookTransaction, error) {
	if db == nil {
		db = r.db
	}
	var txns []models.BookTransaction
	if err := r.unpaidFines(db, memberID).
		Where("fine_amount > 0").
		Order("transaction_date ASC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *transactionRepository) SetFinePaid(db *gorm.DB, ids []uuid.UUID, paid bool) error {
	if db == nil {
		db = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return db.Model(&models.BookTransaction{}).
		Where("id IN ?", ids).
		UpdateColumn("fine_paid", paid).
		Error
}

// CountSubmittedAgainst counts submitted documents that closed or renewed
// the given issue.
func (r *transactionRepository) CountSubmittedAgainst(db *gorm.DB, againstID uuid.UUID) (int64, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.BookTransaction{}).
		Where("against_transaction_id = ? AND doc_status = ?", againstID, models.DocStatusSubmitted).
		Count(&count).Error
	return count, err
}
