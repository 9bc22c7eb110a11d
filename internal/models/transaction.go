package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIssue   TransactionType = "Issue"
	TransactionTypeReturn  TransactionType = "Return"
	TransactionTypeRenew   TransactionType = "Renew"
	TransactionTypeReserve TransactionType = "Reserve"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIssue, TransactionTypeReturn, TransactionTypeRenew, TransactionTypeReserve:
		return true
	}
	return false
}

type BookTransaction struct {
	Base
	BookID               uuid.UUID       `gorm:"type:uuid;not null;index" json:"book_id"`
	MemberID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"member_id"`
	TransactionType      TransactionType `gorm:"type:varchar(10);not null;index" json:"transaction_type"`
	TransactionDate      time.Time       `gorm:"not null" json:"transaction_date"`
	DueDate              *time.Time      `gorm:"type:date;index" json:"due_date"`
	ReturnDate           *time.Time      `gorm:"type:date" json:"return_date"`
	FineAmount           decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"fine_amount"`
	FinePaid             bool            `gorm:"not null;default:false" json:"fine_paid"`
	DocStatus            DocStatus       `gorm:"not null;default:0;index" json:"docstatus"`
	IssuedBy             string          `gorm:"size:140" json:"issued_by,omitempty"`
	ReturnedTo           string          `gorm:"size:140" json:"returned_to,omitempty"`
	RenewedCount         int             `gorm:"not null;default:0" json:"renewed_count"`
	ConditionOnIssue     BookCondition   `gorm:"type:varchar(10)" json:"condition_on_issue,omitempty"`
	ConditionOnReturn    BookCondition   `gorm:"type:varchar(10)" json:"condition_on_return,omitempty"`
	AgainstTransactionID *uuid.UUID      `gorm:"type:uuid" json:"against_transaction_id,omitempty"`
	Notes                string          `gorm:"type:text" json:"notes,omitempty"`
}

// IsOpenIssue reports whether the transaction currently holds a copy.
func (t *BookTransaction) IsOpenIssue() bool {
	return t.TransactionType == TransactionTypeIssue &&
		t.DocStatus == DocStatusSubmitted &&
		t.ReturnDate == nil
}
