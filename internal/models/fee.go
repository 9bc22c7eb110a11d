package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentTypeFine          PaymentType = "Fine Payment"
	PaymentTypeMembershipFee PaymentType = "Membership Fee"
	PaymentTypeDeposit       PaymentType = "Deposit"
	PaymentTypeDamageFee     PaymentType = "Damage Fee"
	PaymentTypeOther         PaymentType = "Other"
)

type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "Cash"
	PaymentMethodCard        PaymentMethod = "Card"
	PaymentMethodUPI         PaymentMethod = "UPI"
	PaymentMethodNetBanking  PaymentMethod = "Net Banking"
	PaymentMethodCheque      PaymentMethod = "Cheque"
	PaymentMethodDemandDraft PaymentMethod = "Demand Draft"
)

type PaymentStatus string

const (
	PaymentStatusDraft     PaymentStatus = "Draft"
	PaymentStatusPaid      PaymentStatus = "Paid"
	PaymentStatusCancelled PaymentStatus = "Cancelled"
)

type FeeCollection struct {
	Base
	MemberID        uuid.UUID                 `gorm:"type:uuid;not null;index" json:"member_id"`
	PaymentType     PaymentType               `gorm:"type:varchar(20);not null" json:"payment_type"`
	PaymentMethod   PaymentMethod             `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentDate     time.Time                 `gorm:"type:date;not null" json:"payment_date"`
	PaymentStatus   PaymentStatus             `gorm:"type:varchar(20);not null;default:'Draft'" json:"payment_status"`
	ReferenceNumber string                    `gorm:"size:140" json:"reference_number,omitempty"`
	MembershipFee   decimal.Decimal           `gorm:"type:numeric(12,2);not null;default:0" json:"membership_fee"`
	LateFee         decimal.Decimal           `gorm:"type:numeric(12,2);not null;default:0" json:"late_fee"`
	DamageFee       decimal.Decimal           `gorm:"type:numeric(12,2);not null;default:0" json:"damage_fee"`
	OtherFee        decimal.Decimal           `gorm:"type:numeric(12,2);not null;default:0" json:"other_fee"`
	FineAmount      decimal.Decimal           `gorm:"type:numeric(12,2);not null;default:0" json:"fine_amount"`
	DiscountAmount  decimal.Decimal           `gorm:"type:numeric(12,2);not null;default:0" json:"discount_amount"`
	TotalAmount     decimal.Decimal           `gorm:"type:numeric(12,2);not null;default:0" json:"total_amount"`
	NetAmount       decimal.Decimal           `gorm:"type:numeric(12,2);not null;default:0" json:"net_amount"`
	CollectedBy     string                    `gorm:"size:140" json:"collected_by,omitempty"`
	DocStatus       DocStatus                 `gorm:"not null;default:0" json:"docstatus"`
	Remarks         string                    `gorm:"type:text" json:"remarks,omitempty"`
	FineDetails     []FeeCollectionFineDetail `gorm:"foreignKey:FeeCollectionID;constraint:OnDelete:CASCADE" json:"fine_details"`
}

type FeeCollectionFineDetail struct {
	Base
	FeeCollectionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"fee_collection_id"`
	TransactionID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	BookID          uuid.UUID       `gorm:"type:uuid" json:"book_id"`
	TransactionDate *time.Time      `gorm:"type:date" json:"transaction_date,omitempty"`
	DueDate         *time.Time      `gorm:"type:date" json:"due_date,omitempty"`
	ReturnDate      *time.Time      `gorm:"type:date" json:"return_date,omitempty"`
	FineAmount      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"fine_amount"`
}
