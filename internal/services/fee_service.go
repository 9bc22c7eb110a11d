package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"library_management/internal/models"
)

// FeeService records payments from members, including settlement of
// overdue fines.
type FeeService interface {
	CreateFeeCollection(ctx context.Context, fee *models.FeeCollection) (*models.FeeCollection, error)
	GetFeeCollection(ctx context.Context, id uuid.UUID) (*models.FeeCollection, error)
	SubmitFeeCollection(ctx context.Context, id uuid.UUID) (*models.FeeCollection, error)
	CancelFeeCollection(ctx context.Context, id uuid.UUID) (*models.FeeCollection, error)
	LoadOutstandingFines(ctx context.Context, id uuid.UUID) (*models.FeeCollection, error)
	GetOutstandingFines(ctx context.Context, memberID uuid.UUID) ([]models.FeeCollectionFineDetail, error)
}

type feeService struct {
	*core
}

func (s *feeService) CreateFeeCollection(ctx context.Context, fee *models.FeeCollection) (*models.FeeCollection, error) {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.repos.Members.GetByID(tx, fee.MemberID); err != nil {
			return notFound(err, ErrMemberNotFound)
		}
		fee.ID = uuid.Nil
		fee.DocStatus = models.DocStatusDraft
		fee.PaymentStatus = models.PaymentStatusDraft
		fee.CollectedBy = ""
		if err := s.fillFineDetails(tx, fee); err != nil {
			return err
		}
		if err := s.validateFee(fee); err != nil {
			return err
		}
		if err := s.repos.Fees.Create(tx, fee); err != nil {
			s.log.WithError(err).WithField("member_id", fee.MemberID).Error("CreateFeeCollection: failed to create fee collection")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.FeeCollectionEvent("create", fee.NetAmount)
	s.log.WithFields(logrus.Fields{
		"fee_collection_id": fee.ID,
		"member_id":         fee.MemberID,
		"net_amount":        fee.NetAmount.StringFixed(2),
	}).Info("CreateFeeCollection: created draft")
	return fee, nil
}

func (s *feeService) GetFeeCollection(ctx context.Context, id uuid.UUID) (*models.FeeCollection, error) {
	fee, err := s.repos.Fees.GetByID(s.conn(ctx), id)
	if err != nil {
		return nil, notFound(err, ErrFeeCollectionNotFound)
	}
	return fee, nil
}

// SubmitFeeCollection settles the payment: every fine detail is marked paid
// and the member's total fines are recomputed in the same unit of work.
func (s *feeService) SubmitFeeCollection(ctx context.Context, id uuid.UUID) (*models.FeeCollection, error) {
	var fee *models.FeeCollection
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		fee, err = s.repos.Fees.GetByIDForUpdate(tx, id)
		if err != nil {
			return notFound(err, ErrFeeCollectionNotFound)
		}
		if fee.DocStatus != models.DocStatusDraft {
			return fmt.Errorf("%w: cannot submit a %s fee collection", ErrInvalidDocState, fee.DocStatus)
		}
		if err := s.validateFee(fee); err != nil {
			return err
		}
		if fee.PaymentMethod != models.PaymentMethodCash && strings.TrimSpace(fee.ReferenceNumber) == "" {
			return fmt.Errorf("%w for %s", ErrReferenceRequired, fee.PaymentMethod)
		}
		if !fee.NetAmount.IsPositive() {
			return ErrNonPositiveNetAmount
		}

		ids := make([]uuid.UUID, 0, len(fee.FineDetails))
		for _, d := range fee.FineDetails {
			txn, err := s.repos.Transactions.GetByIDForUpdate(tx, d.TransactionID)
			if err != nil {
				return notFound(err, ErrTransactionNotFound)
			}
			if txn.DocStatus != models.DocStatusSubmitted || txn.MemberID != fee.MemberID || txn.FinePaid {
				return fmt.Errorf("%w: %s", ErrFineNotPayable, txn.ID)
			}
			ids = append(ids, txn.ID)
		}
		if err := s.repos.Transactions.SetFinePaid(tx, ids, true); err != nil {
			return err
		}
		if _, err := s.refreshMember(tx, fee.MemberID); err != nil {
			return err
		}

		fee.CollectedBy = ActorFrom(ctx)
		fee.PaymentStatus = models.PaymentStatusPaid
		fee.DocStatus = models.DocStatusSubmitted
		return s.repos.Fees.Update(tx, fee)
	})
	if err != nil {
		s.log.WithError(err).WithField("fee_collection_id", id).Warn("SubmitFeeCollection: submit failed")
		return nil, err
	}
	s.metrics.FeeCollectionEvent("submit", fee.NetAmount)
	s.log.WithFields(logrus.Fields{
		"fee_collection_id": id,
		"member_id":         fee.MemberID,
		"fines_settled":     len(fee.FineDetails),
	}).Info("SubmitFeeCollection: payment collected")
	return fee, nil
}

// CancelFeeCollection reverses a submitted payment and reinstates the fines
// it settled.
func (s *feeService) CancelFeeCollection(ctx context.Context, id uuid.UUID) (*models.FeeCollection, error) {
	var fee *models.FeeCollection
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		fee, err = s.repos.Fees.GetByIDForUpdate(tx, id)
		if err != nil {
			return notFound(err, ErrFeeCollectionNotFound)
		}
		if fee.DocStatus != models.DocStatusSubmitted {
			return fmt.Errorf("%w: cannot cancel a %s fee collection", ErrInvalidDocState, fee.DocStatus)
		}
		ids := make([]uuid.UUID, 0, len(fee.FineDetails))
		for _, d := range fee.FineDetails {
			ids = append(ids, d.TransactionID)
		}
		if err := s.repos.Transactions.SetFinePaid(tx, ids, false); err != nil {
			return err
		}
		if _, err := s.refreshMember(tx, fee.MemberID); err != nil {
			return err
		}
		fee.PaymentStatus = models.PaymentStatusCancelled
		fee.DocStatus = models.DocStatusCancelled
		return s.repos.Fees.Update(tx, fee)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.FeeCollectionEvent("cancel", fee.NetAmount)
	s.log.WithField("fee_collection_id", id).Info("CancelFeeCollection: payment cancelled")
	return fee, nil
}

// LoadOutstandingFines replaces the draft's fine details with the member's
// unpaid fines and recomputes the amounts.
func (s *feeService) LoadOutstandingFines(ctx context.Context, id uuid.UUID) (*models.FeeCollection, error) {
	var fee *models.FeeCollection
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		fee, err = s.repos.Fees.GetByIDForUpdate(tx, id)
		if err != nil {
			return notFound(err, ErrFeeCollectionNotFound)
		}
		if fee.DocStatus != models.DocStatusDraft {
			return fmt.Errorf("%w: fines can only be loaded into a draft", ErrInvalidDocState)
		}
		details, err := s.outstandingFines(tx, fee.MemberID)
		if err != nil {
			return err
		}
		if err := s.repos.Fees.ReplaceFineDetails(tx, fee.ID, details); err != nil {
			return err
		}
		fee.FineDetails = details
		fee.FineAmount = decimal.Zero
		if err := s.validateFee(fee); err != nil {
			return err
		}
		return s.repos.Fees.Update(tx, fee)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"fee_collection_id": id,
		"fines":             len(fee.FineDetails),
		"fine_amount":       fee.FineAmount.StringFixed(2),
	}).Info("LoadOutstandingFines: outstanding fines loaded")
	return fee, nil
}

// GetOutstandingFines lists the member's unpaid fines without saving them.
func (s *feeService) GetOutstandingFines(ctx context.Context, memberID uuid.UUID) ([]models.FeeCollectionFineDetail, error) {
	db := s.conn(ctx)
	if _, err := s.repos.Members.GetByID(db, memberID); err != nil {
		return nil, notFound(err, ErrMemberNotFound)
	}
	return s.outstandingFines(db, memberID)
}

func (s *feeService) outstandingFines(db *gorm.DB, memberID uuid.UUID) ([]models.FeeCollectionFineDetail, error) {
	txns, err := s.repos.Transactions.ListUnpaidFines(db, memberID)
	if err != nil {
		return nil, err
	}
	details := make([]models.FeeCollectionFineDetail, 0, len(txns))
	for i := range txns {
		details = append(details, fineDetailFrom(&txns[i]))
	}
	return details, nil
}

// fillFineDetails copies book, dates and amount from each referenced
// transaction so a detail always mirrors its source.
func (s *feeService) fillFineDetails(tx *gorm.DB, fee *models.FeeCollection) error {
	seen := make(map[uuid.UUID]bool, len(fee.FineDetails))
	for i, d := range fee.FineDetails {
		if seen[d.TransactionID] {
			return fmt.Errorf("%w: transaction %s is listed twice", ErrInvalidPaymentDetails, d.TransactionID)
		}
		seen[d.TransactionID] = true
		txn, err := s.repos.Transactions.GetByID(tx, d.TransactionID)
		if err != nil {
			return notFound(err, ErrTransactionNotFound)
		}
		if txn.MemberID != fee.MemberID {
			return fmt.Errorf("%w: %s belongs to another member", ErrFineNotPayable, txn.ID)
		}
		fee.FineDetails[i] = fineDetailFrom(txn)
	}
	return nil
}

func fineDetailFrom(txn *models.BookTransaction) models.FeeCollectionFineDetail {
	date := txn.TransactionDate
	return models.FeeCollectionFineDetail{
		TransactionID:   txn.ID,
		BookID:          txn.BookID,
		TransactionDate: &date,
		DueDate:         txn.DueDate,
		ReturnDate:      txn.ReturnDate,
		FineAmount:      txn.FineAmount,
	}
}

// validateFee applies the defaults and derives fine, total and net amounts.
func (s *feeService) validateFee(fee *models.FeeCollection) error {
	if fee.PaymentDate.IsZero() {
		fee.PaymentDate = s.today()
	}
	if fee.PaymentMethod == "" {
		fee.PaymentMethod = models.PaymentMethodCash
	}
	if fee.PaymentType == "" {
		fee.PaymentType = models.PaymentTypeOther
		if len(fee.FineDetails) > 0 {
			fee.PaymentType = models.PaymentTypeFine
		}
	}
	if !validPaymentMethod(fee.PaymentMethod) {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidPaymentDetails, fee.PaymentMethod)
	}
	if !validPaymentType(fee.PaymentType) {
		return fmt.Errorf("%w: unknown payment type %q", ErrInvalidPaymentDetails, fee.PaymentType)
	}

	if len(fee.FineDetails) > 0 {
		sum := decimal.Zero
		for _, d := range fee.FineDetails {
			sum = sum.Add(d.FineAmount)
		}
		fee.FineAmount = sum
	}
	for _, amount := range []decimal.Decimal{
		fee.MembershipFee, fee.LateFee, fee.DamageFee, fee.OtherFee, fee.FineAmount, fee.DiscountAmount,
	} {
		if amount.IsNegative() {
			return fmt.Errorf("%w: amounts cannot be negative", ErrInvalidPaymentDetails)
		}
	}

	fee.TotalAmount = fee.MembershipFee.
		Add(fee.LateFee).
		Add(fee.DamageFee).
		Add(fee.OtherFee).
		Add(fee.FineAmount)
	fee.NetAmount = fee.TotalAmount.Sub(fee.DiscountAmount)
	return nil
}

func validPaymentMethod(m models.PaymentMethod) bool {
	switch m {
	case models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodUPI,
		models.PaymentMethodNetBanking, models.PaymentMethodCheque, models.PaymentMethodDemandDraft:
		return true
	}
	return false
}

func validPaymentType(t models.PaymentType) bool {
	switch t {
	case models.PaymentTypeFine, models.PaymentTypeMembershipFee, models.PaymentTypeDeposit,
		models.PaymentTypeDamageFee, models.PaymentTypeOther:
		return true
	}
	return false
}
