package repositories

import (
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"library_management/internal/models"
)

var ErrBuildingQueryFailed = errors.New("failed to build report query")

// IssuedBookRow is one open loan joined with its member, book and shelf
// location.
type IssuedBookRow struct {
	TransactionID   uuid.UUID       `gorm:"column:transaction_id"`
	MemberID        uuid.UUID       `gorm:"column:member_id"`
	FirstName       string          `gorm:"column:first_name"`
	LastName        string          `gorm:"column:last_name"`
	Email           *string         `gorm:"column:email"`
	BookID          uuid.UUID       `gorm:"column:book_id"`
	BookTitle       string          `gorm:"column:book_title"`
	ISBN            *string         `gorm:"column:isbn"`
	TransactionDate time.Time       `gorm:"column:transaction_date"`
	DueDate         *time.Time      `gorm:"column:due_date"`
	FineAmount      decimal.Decimal `gorm:"column:fine_amount"`
	IssuedBy        *string         `gorm:"column:issued_by"`
	Location        *string         `gorm:"column:location"`
}

// IssuedBookQuery selects open loans. Zero values match everything.
type IssuedBookQuery struct {
	MemberID       *uuid.UUID
	BookID         *uuid.UUID
	TransactionIDs []uuid.UUID
}

type ReportRepository interface {
	OpenIssues(db *gorm.DB, q IssuedBookQuery) ([]IssuedBookRow, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) OpenIssues(db *gorm.DB, q IssuedBookQuery) ([]IssuedBookRow, error) {
	if db == nil {
		db = r.db
	}
	sqlQuery, err := buildOpenIssuesQuery(dialectFor(db), q)
	if err != nil {
		return nil, err
	}
	var rows []IssuedBookRow
	if err := db.Raw(sqlQuery).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func buildOpenIssuesQuery(dialect string, q IssuedBookQuery) (string, error) {
	stmt := goqu.Dialect(dialect).
		From(goqu.T("book_transactions").As("bt")).
		Join(goqu.T("library_members").As("lm"), goqu.On(goqu.I("bt.member_id").Eq(goqu.I("lm.id")))).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("bt.book_id").Eq(goqu.I("b.id")))).
		LeftJoin(goqu.T("library_locations").As("ll"), goqu.On(goqu.I("b.location_id").Eq(goqu.I("ll.id")))).
		Select(
			goqu.I("bt.id").As("transaction_id"),
			goqu.I("bt.member_id").As("member_id"),
			goqu.I("lm.first_name").As("first_name"),
			goqu.I("lm.last_name").As("last_name"),
			goqu.I("lm.email").As("email"),
			goqu.I("bt.book_id").As("book_id"),
			goqu.I("b.title").As("book_title"),
			goqu.I("b.isbn").As("isbn"),
			goqu.I("bt.transaction_date").As("transaction_date"),
			goqu.I("bt.due_date").As("due_date"),
			goqu.I("bt.fine_amount").As("fine_amount"),
			goqu.I("bt.issued_by").As("issued_by"),
			goqu.I("ll.name").As("location"),
		).
		Where(goqu.Ex{
			"bt.transaction_type": string(models.TransactionTypeIssue),
			"bt.doc_status":       int(models.DocStatusSubmitted),
			"bt.return_date":      nil,
		}).
		Order(goqu.I("bt.due_date").Asc(), goqu.I("bt.transaction_date").Desc())

	if q.MemberID != nil {
		stmt = stmt.Where(goqu.I("bt.member_id").Eq(q.MemberID.String()))
	}
	if q.BookID != nil {
		stmt = stmt.Where(goqu.I("bt.book_id").Eq(q.BookID.String()))
	}
	if len(q.TransactionIDs) > 0 {
		ids := make([]string, 0, len(q.TransactionIDs))
		for _, id := range q.TransactionIDs {
			ids = append(ids, id.String())
		}
		stmt = stmt.Where(goqu.I("bt.id").In(ids))
	}

	sqlQuery, _, err := stmt.ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}
	return sqlQuery, nil
}

func dialectFor(db *gorm.DB) string {
	if db.Dialector != nil && db.Dialector.Name() == "sqlite" {
		return "sqlite3"
	}
	return "postgres"
}
