package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"library_management/internal/models"
	"library_management/internal/policy"
	"library_management/internal/repositories"
)

// TransactionService runs the book transaction lifecycle: draft, submit and
// cancel, plus the issue/return/renew shortcuts.
type TransactionService interface {
	CreateTransaction(ctx context.Context, txn *models.BookTransaction) (*models.BookTransaction, error)
	SubmitTransaction(ctx context.Context, id uuid.UUID) (*models.BookTransaction, error)
	CancelTransaction(ctx context.Context, id uuid.UUID) (*models.BookTransaction, error)

	IssueBook(ctx context.Context, memberID, bookID uuid.UUID) (*models.BookTransaction, error)
	ReturnBook(ctx context.Context, id uuid.UUID, returnDate *time.Time) (*models.BookTransaction, error)
	RenewTransaction(ctx context.Context, id uuid.UUID) (*models.BookTransaction, error)

	GetIssuedBookCount(ctx context.Context, filter repositories.TransactionFilter) (int64, error)
	GetTotalFines(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.BookTransaction, error)
	ListTransactions(ctx context.Context, filter repositories.TransactionFilter) ([]models.BookTransaction, error)
}

type transactionService struct {
	*core
}

// ─── Lifecycle ────────────────────────────────────────────────────────────────

// CreateTransaction stores txn as a draft after applying defaults and
// running the validation chain for its type.
func (s *transactionService) CreateTransaction(ctx context.Context, txn *models.BookTransaction) (*models.BookTransaction, error) {
	if !txn.TransactionType.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidTransaction, txn.TransactionType)
	}
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		txn.ID = uuid.Nil
		txn.DocStatus = models.DocStatusDraft
		txn.FinePaid = false
		txn.RenewedCount = 0
		if err := s.prepare(ctx, tx, txn); err != nil {
			return err
		}
		if err := s.repos.Transactions.Create(tx, txn); err != nil {
			s.log.WithError(err).WithFields(logFields(txn.MemberID, txn.BookID)).
				Error("CreateTransaction: failed to create transaction")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.TransactionEvent(string(txn.TransactionType), "create")
	s.log.WithFields(logFields(txn.MemberID, txn.BookID)).
		WithField("transaction_id", txn.ID).
		Infof("CreateTransaction: created %s draft", txn.TransactionType)
	return txn, nil
}

// SubmitTransaction re-validates a draft against fresh state, submits it,
// and recomputes the book and member counters in the same unit of work.
func (s *transactionService) SubmitTransaction(ctx context.Context, id uuid.UUID) (*models.BookTransaction, error) {
	var txn *models.BookTransaction
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		txn, err = s.repos.Transactions.GetByIDForUpdate(tx, id)
		if err != nil {
			return notFound(err, ErrTransactionNotFound)
		}
		if txn.DocStatus != models.DocStatusDraft {
			return fmt.Errorf("%w: cannot submit a %s transaction", ErrInvalidDocState, txn.DocStatus)
		}
		return s.submit(ctx, tx, txn)
	})
	if err != nil {
		s.log.WithError(err).WithField("transaction_id", id).Warn("SubmitTransaction: submit failed")
		return nil, err
	}
	s.afterSubmit(txn)
	return txn, nil
}

// CancelTransaction voids a submitted transaction. Cancelling a return that
// closed an issue reopens that issue.
func (s *transactionService) CancelTransaction(ctx context.Context, id uuid.UUID) (*models.BookTransaction, error) {
	var txn *models.BookTransaction
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		txn, err = s.repos.Transactions.GetByIDForUpdate(tx, id)
		if err != nil {
			return notFound(err, ErrTransactionNotFound)
		}
		if txn.DocStatus != models.DocStatusSubmitted {
			return fmt.Errorf("%w: cannot cancel a %s transaction", ErrInvalidDocState, txn.DocStatus)
		}
		if txn.FinePaid {
			return fmt.Errorf("%w: the fine has already been collected", ErrInvalidDocState)
		}

		switch txn.TransactionType {
		case models.TransactionTypeRenew:
			return fmt.Errorf("%w: renewals cannot be cancelled", ErrInvalidDocState)
		case models.TransactionTypeIssue:
			linked, err := s.repos.Transactions.CountSubmittedAgainst(tx, txn.ID)
			if err != nil {
				return err
			}
			if linked > 0 {
				return fmt.Errorf("%w: cancel the return or renewal documents first", ErrInvalidDocState)
			}
		case models.TransactionTypeReturn:
			if txn.AgainstTransactionID != nil {
				if err := s.reopenIssue(tx, *txn.AgainstTransactionID); err != nil {
					return err
				}
			}
		}

		txn.DocStatus = models.DocStatusCancelled
		if err := s.repos.Transactions.Update(tx, txn); err != nil {
			return err
		}
		if _, err := s.refreshBook(tx, txn.BookID); err != nil {
			return err
		}
		_, err = s.refreshMember(tx, txn.MemberID)
		return err
	})
	if err != nil {
		s.log.WithError(err).WithField("transaction_id", id).Warn("CancelTransaction: cancel failed")
		return nil, err
	}
	s.metrics.TransactionEvent(string(txn.TransactionType), "cancel")
	s.log.WithField("transaction_id", id).Infof("CancelTransaction: cancelled %s", txn.TransactionType)
	return txn, nil
}

// IssueBook creates and submits an Issue in one call.
func (s *transactionService) IssueBook(ctx context.Context, memberID, bookID uuid.UUID) (*models.BookTransaction, error) {
	txn := &models.BookTransaction{
		MemberID:        memberID,
		BookID:          bookID,
		TransactionType: models.TransactionTypeIssue,
		DocStatus:       models.DocStatusDraft,
	}
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := s.prepare(ctx, tx, txn); err != nil {
			return err
		}
		if err := s.repos.Transactions.Create(tx, txn); err != nil {
			return err
		}
		return s.submit(ctx, tx, txn)
	})
	if err != nil {
		s.log.WithError(err).WithFields(logFields(memberID, bookID)).Warn("IssueBook: issue rejected")
		return nil, err
	}
	s.afterSubmit(txn)
	return txn, nil
}

// ReturnBook closes an open issue in place. The transaction becomes a
// Return carrying the overdue fine, if any.
func (s *transactionService) ReturnBook(ctx context.Context, id uuid.UUID, returnDate *time.Time) (*models.BookTransaction, error) {
	var txn *models.BookTransaction
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		txn, err = s.repos.Transactions.GetByIDForUpdate(tx, id)
		if err != nil {
			return notFound(err, ErrTransactionNotFound)
		}
		if isClosed(txn) {
			return ErrAlreadyReturned
		}
		if !txn.IsOpenIssue() {
			return ErrNotOpenIssue
		}

		p, err := s.loadPolicy(tx)
		if err != nil {
			return err
		}
		returned := s.today()
		if returnDate != nil {
			returned = policy.DateOf(*returnDate)
		}
		if returned.Before(policy.DateOf(txn.TransactionDate)) {
			return fmt.Errorf("%w: return date is before the issue date", ErrInvalidTransaction)
		}

		txn.ReturnDate = &returned
		txn.TransactionType = models.TransactionTypeReturn
		txn.ReturnedTo = ActorFrom(ctx)
		txn.FineAmount = fineFor(p, txn)
		if err := s.repos.Transactions.Update(tx, txn); err != nil {
			return err
		}
		if _, err := s.refreshBook(tx, txn.BookID); err != nil {
			return err
		}
		_, err = s.refreshMember(tx, txn.MemberID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.TransactionEvent(string(models.TransactionTypeReturn), "return")
	s.metrics.FineAssessed(txn.FineAmount)
	s.log.WithFields(logFields(txn.MemberID, txn.BookID)).WithFields(logrus.Fields{
		"transaction_id": id,
		"fine":           txn.FineAmount.StringFixed(2),
	}).Info("ReturnBook: book returned")
	return txn, nil
}

// RenewTransaction extends an open, non-overdue issue by one issue period
// counted from today.
func (s *transactionService) RenewTransaction(ctx context.Context, id uuid.UUID) (*models.BookTransaction, error) {
	var txn *models.BookTransaction
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		txn, err = s.repos.Transactions.GetByIDForUpdate(tx, id)
		if err != nil {
			return notFound(err, ErrTransactionNotFound)
		}
		if isClosed(txn) {
			return ErrAlreadyReturned
		}
		if !txn.IsOpenIssue() {
			return ErrNotOpenIssue
		}
		member, err := s.repos.Members.GetByID(tx, txn.MemberID)
		if err != nil {
			return notFound(err, ErrMemberNotFound)
		}
		if err := s.checkMemberStatus(member); err != nil {
			return err
		}
		p, err := s.loadPolicy(tx)
		if err != nil {
			return err
		}
		return s.renew(tx, p, txn)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.TransactionEvent(string(models.TransactionTypeIssue), "renew")
	s.log.WithField("transaction_id", id).
		WithField("due_date", txn.DueDate.Format(time.DateOnly)).
		Info("RenewTransaction: loan renewed")
	return txn, nil
}

// ─── Queries ──────────────────────────────────────────────────────────────────

func (s *transactionService) GetIssuedBookCount(ctx context.Context, filter repositories.TransactionFilter) (int64, error) {
	return s.repos.Transactions.CountOpenIssues(s.conn(ctx), filter)
}

// GetTotalFines sums the member's unpaid fines on submitted transactions.
func (s *transactionService) GetTotalFines(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error) {
	db := s.conn(ctx)
	if _, err := s.repos.Members.GetByID(db, memberID); err != nil {
		return decimal.Zero, notFound(err, ErrMemberNotFound)
	}
	return s.repos.Transactions.SumUnpaidFines(db, memberID)
}

func (s *transactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*models.BookTransaction, error) {
	txn, err := s.repos.Transactions.GetByID(s.conn(ctx), id)
	if err != nil {
		return nil, notFound(err, ErrTransactionNotFound)
	}
	return txn, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, filter repositories.TransactionFilter) ([]models.BookTransaction, error) {
	return s.repos.Transactions.List(s.conn(ctx), filter)
}

// ─── Internals ────────────────────────────────────────────────────────────────

// prepare applies the default values, computes the fine and runs the
// validation chain. It does not write the transaction itself.
func (s *transactionService) prepare(ctx context.Context, tx *gorm.DB, txn *models.BookTransaction) error {
	member, err := s.repos.Members.GetByID(tx, txn.MemberID)
	if err != nil {
		return notFound(err, ErrMemberNotFound)
	}
	p, err := s.loadPolicy(tx)
	if err != nil {
		return err
	}

	if txn.TransactionDate.IsZero() {
		txn.TransactionDate = s.now().UTC()
	}

	switch txn.TransactionType {
	case models.TransactionTypeIssue:
		if txn.DueDate == nil {
			due := p.DueDate(txn.TransactionDate)
			txn.DueDate = &due
		}
		if txn.IssuedBy == "" {
			txn.IssuedBy = ActorFrom(ctx)
		}
		txn.ReturnDate = nil
		txn.FineAmount = decimal.Zero
		return s.validateIssue(tx, p, member, txn)

	case models.TransactionTypeReturn:
		if txn.ReturnDate == nil {
			today := s.today()
			txn.ReturnDate = &today
		}
		if txn.ReturnedTo == "" {
			txn.ReturnedTo = ActorFrom(ctx)
		}
		issue, err := s.findTargetIssue(tx, txn)
		if err != nil {
			return err
		}
		if txn.DueDate == nil {
			txn.DueDate = issue.DueDate
		}
		if txn.ReturnDate.Before(policy.DateOf(issue.TransactionDate)) {
			return fmt.Errorf("%w: return date is before the issue date", ErrInvalidTransaction)
		}
		txn.FineAmount = fineFor(p, txn)
		return nil

	case models.TransactionTypeRenew:
		issue, err := s.findTargetIssue(tx, txn)
		if err != nil {
			return err
		}
		if err := s.checkMemberStatus(member); err != nil {
			return err
		}
		if isOverdue(issue, s.today()) {
			return ErrOverdueRenewal
		}
		txn.FineAmount = decimal.Zero
		return nil

	case models.TransactionTypeReserve:
		if _, err := s.repos.Books.GetByID(tx, txn.BookID); err != nil {
			return notFound(err, ErrBookNotFound)
		}
		if err := s.checkMemberStatus(member); err != nil {
			return err
		}
		if !p.EnableReservations {
			return ErrReservationsDisabled
		}
		txn.FineAmount = decimal.Zero
		return nil
	}
	return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidTransaction, txn.TransactionType)
}

// submit re-runs prepare against fresh state, applies the type's effect and
// recomputes the book and member counters.
func (s *transactionService) submit(ctx context.Context, tx *gorm.DB, txn *models.BookTransaction) error {
	if err := s.prepare(ctx, tx, txn); err != nil {
		return err
	}

	switch txn.TransactionType {
	case models.TransactionTypeReturn:
		issue, err := s.findTargetIssue(tx, txn)
		if err != nil {
			return err
		}
		issue.ReturnDate = txn.ReturnDate
		issue.ReturnedTo = txn.ReturnedTo
		if err := s.repos.Transactions.Update(tx, issue); err != nil {
			return err
		}
		txn.AgainstTransactionID = &issue.ID

	case models.TransactionTypeRenew:
		issue, err := s.findTargetIssue(tx, txn)
		if err != nil {
			return err
		}
		p, err := s.loadPolicy(tx)
		if err != nil {
			return err
		}
		if err := s.renew(tx, p, issue); err != nil {
			return err
		}
		txn.DueDate = issue.DueDate
		txn.AgainstTransactionID = &issue.ID
	}

	txn.DocStatus = models.DocStatusSubmitted
	if err := s.repos.Transactions.Update(tx, txn); err != nil {
		return err
	}
	if txn.TransactionType == models.TransactionTypeReserve {
		return nil
	}
	if _, err := s.refreshBook(tx, txn.BookID); err != nil {
		return err
	}
	_, err := s.refreshMember(tx, txn.MemberID)
	return err
}

func (s *transactionService) afterSubmit(txn *models.BookTransaction) {
	s.metrics.TransactionEvent(string(txn.TransactionType), "submit")
	if txn.TransactionType == models.TransactionTypeReturn {
		s.metrics.FineAssessed(txn.FineAmount)
	}
	s.log.WithFields(logFields(txn.MemberID, txn.BookID)).
		WithField("transaction_id", txn.ID).
		Infof("SubmitTransaction: %s submitted", txn.TransactionType)
}

// validateIssue runs the issue chain: member standing, then book
// availability, then the member's limits. The book row stays locked until
// the surrounding transaction ends.
func (s *transactionService) validateIssue(tx *gorm.DB, p policy.Policy, member *models.LibraryMember, txn *models.BookTransaction) error {
	if err := s.checkMemberStatus(member); err != nil {
		return err
	}

	book, err := s.refreshBook(tx, txn.BookID)
	if err != nil {
		return err
	}
	if book.IsReferenceOnly {
		return ErrReferenceOnly
	}
	if book.AvailableCopies <= 0 {
		return ErrBookUnavailable
	}
	if txn.ConditionOnIssue == "" {
		txn.ConditionOnIssue = book.Condition
	}

	if err := s.recomputeMemberStats(tx, member); err != nil {
		return err
	}
	limit := member.MaxBooksAllowed
	if limit <= 0 {
		limit = p.MaxBooksPerMember
	}
	if member.CurrentBooksIssued >= limit {
		s.log.WithFields(logFields(member.ID, book.ID)).
			WithField("limit", limit).
			Warn("IssueBook: member has reached the issue limit")
		return fmt.Errorf("%w of %d", ErrIssueLimitReached, limit)
	}
	if member.TotalFines.IsPositive() {
		return fmt.Errorf("%w: %s outstanding", ErrOutstandingFines, member.TotalFines.StringFixed(2))
	}
	return nil
}

func (s *transactionService) checkMemberStatus(member *models.LibraryMember) error {
	if member.MembershipStatus != models.MembershipStatusActive {
		return fmt.Errorf("%w: current status is %s", ErrMemberNotActive, member.MembershipStatus)
	}
	if member.MembershipEndDate != nil && policy.DateOf(*member.MembershipEndDate).Before(s.today()) {
		return fmt.Errorf("%w on %s", ErrMembershipExpired, member.MembershipEndDate.Format(time.DateOnly))
	}
	return nil
}

// findTargetIssue locks the open issue a Return or Renew document acts on:
// the one named by against_transaction_id, or else the member's earliest-due
// open issue of the same book.
func (s *transactionService) findTargetIssue(tx *gorm.DB, txn *models.BookTransaction) (*models.BookTransaction, error) {
	var targetID uuid.UUID
	if txn.AgainstTransactionID != nil {
		targetID = *txn.AgainstTransactionID
	} else {
		open, err := s.repos.Transactions.ListOpenIssues(tx, repositories.TransactionFilter{
			MemberID: &txn.MemberID,
			BookID:   &txn.BookID,
		})
		if err != nil {
			return nil, err
		}
		if len(open) == 0 {
			return nil, fmt.Errorf("%w: member has no open issue of this book", ErrNotOpenIssue)
		}
		targetID = open[0].ID
	}

	issue, err := s.repos.Transactions.GetByIDForUpdate(tx, targetID)
	if err != nil {
		return nil, notFound(err, ErrTransactionNotFound)
	}
	if issue.MemberID != txn.MemberID || issue.BookID != txn.BookID {
		return nil, fmt.Errorf("%w: transaction %s belongs to another member or book", ErrInvalidTransaction, issue.ID)
	}
	if !issue.IsOpenIssue() {
		if issue.ReturnDate != nil {
			return nil, ErrAlreadyReturned
		}
		return nil, ErrNotOpenIssue
	}
	return issue, nil
}

func (s *transactionService) renew(tx *gorm.DB, p policy.Policy, issue *models.BookTransaction) error {
	today := s.today()
	if isOverdue(issue, today) {
		return ErrOverdueRenewal
	}
	due := policy.AddDays(today, p.IssuePeriodDays)
	issue.DueDate = &due
	issue.RenewedCount++
	return s.repos.Transactions.Update(tx, issue)
}

// reopenIssue undoes the close performed by a standalone Return.
func (s *transactionService) reopenIssue(tx *gorm.DB, issueID uuid.UUID) error {
	issue, err := s.repos.Transactions.GetByIDForUpdate(tx, issueID)
	if err != nil {
		return notFound(err, ErrTransactionNotFound)
	}
	if issue.DocStatus != models.DocStatusSubmitted || issue.TransactionType != models.TransactionTypeIssue {
		return nil
	}
	issue.ReturnDate = nil
	issue.ReturnedTo = ""
	return s.repos.Transactions.Update(tx, issue)
}

// isClosed reports whether a submitted loan has already been given back.
func isClosed(txn *models.BookTransaction) bool {
	return txn.DocStatus == models.DocStatusSubmitted &&
		(txn.ReturnDate != nil || txn.TransactionType == models.TransactionTypeReturn)
}

func isOverdue(issue *models.BookTransaction, today time.Time) bool {
	return issue.DueDate != nil && policy.DaysBetween(*issue.DueDate, today) > 0
}

// fineFor is the overdue fine of a Return; every other type carries none.
func fineFor(p policy.Policy, txn *models.BookTransaction) decimal.Decimal {
	if txn.TransactionType != models.TransactionTypeReturn || txn.DueDate == nil || txn.ReturnDate == nil {
		return decimal.Zero
	}
	return p.Fine(*txn.DueDate, *txn.ReturnDate)
}

func logFields(memberID, bookID uuid.UUID) logrus.Fields {
	return logrus.Fields{"member_id": memberID, "book_id": bookID}
}
