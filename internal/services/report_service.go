package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"library_management/internal/notify"
	"library_management/internal/policy"
	"library_management/internal/repositories"
)

// ReminderTemplate names the email template rendered by the mail relay.
const ReminderTemplate = "book_return_reminder"

// IssuedBooksFilter narrows the issued books report. Zero values match
// everything. Dates compare against the issue date.
type IssuedBooksFilter struct {
	MemberID *uuid.UUID
	BookID   *uuid.UUID
	FromDate *time.Time
	ToDate   *time.Time
	Status   string
}

type IssuedBookReportRow struct {
	TransactionID   uuid.UUID       `json:"transaction_id"`
	MemberID        uuid.UUID       `json:"member"`
	MemberName      string          `json:"member_name"`
	BookID          uuid.UUID       `json:"book"`
	BookTitle       string          `json:"book_title"`
	ISBN            string          `json:"isbn,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	DueDate         *time.Time      `json:"due_date"`
	DaysOverdue     int             `json:"days_overdue"`
	FineAmount      decimal.Decimal `json:"fine_amount"`
	Status          string          `json:"status"`
	IssuedBy        string          `json:"issued_by,omitempty"`
	Location        string          `json:"location,omitempty"`
}

type BulkReturnResult struct {
	ReturnedCount int `json:"returned_count"`
}

type ReminderResult struct {
	SentCount int `json:"sent_count"`
}

type FineReportLine struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	Member        string          `json:"member"`
	MemberID      uuid.UUID       `json:"member_id"`
	BookTitle     string          `json:"book_title"`
	DueDate       time.Time       `json:"due_date"`
	OverdueDays   int             `json:"overdue_days"`
	FineAmount    decimal.Decimal `json:"fine_amount"`
}

type FineReport struct {
	Success           bool             `json:"success"`
	TotalTransactions int              `json:"total_transactions"`
	TotalFineAmount   decimal.Decimal  `json:"total_fine_amount"`
	ReportURL         string           `json:"report_url"`
	Lines             []FineReportLine `json:"lines"`
}

// ReportService serves the issued books report and its bulk actions.
type ReportService interface {
	IssuedBooks(ctx context.Context, filter IssuedBooksFilter) ([]IssuedBookReportRow, error)
	BulkReturnBooks(ctx context.Context, ids []uuid.UUID) (BulkReturnResult, error)
	SendReminderEmails(ctx context.Context, ids []uuid.UUID) (ReminderResult, error)
	SendOverdueReminders(ctx context.Context) (ReminderResult, error)
	GenerateFineReport(ctx context.Context, ids []uuid.UUID) (*FineReport, error)
}

type reportService struct {
	*core
	txns *transactionService
}

// IssuedBooks lists open issues ordered by due date, each labelled Overdue,
// Due Soon or Active as of today.
func (s *reportService) IssuedBooks(ctx context.Context, filter IssuedBooksFilter) ([]IssuedBookReportRow, error) {
	switch filter.Status {
	case "", policy.StatusOverdue, policy.StatusDueSoon, policy.StatusActive:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidReportFilter, filter.Status)
	}

	rows, err := s.repos.Reports.OpenIssues(s.conn(ctx), repositories.IssuedBookQuery{
		MemberID: filter.MemberID,
		BookID:   filter.BookID,
	})
	if err != nil {
		s.log.WithError(err).Error("IssuedBooks: report query failed")
		return nil, err
	}

	today := s.today()
	out := make([]IssuedBookReportRow, 0, len(rows))
	for _, r := range rows {
		issued := policy.DateOf(r.TransactionDate)
		if filter.FromDate != nil && issued.Before(policy.DateOf(*filter.FromDate)) {
			continue
		}
		if filter.ToDate != nil && issued.After(policy.DateOf(*filter.ToDate)) {
			continue
		}
		standing := policy.Classify(r.DueDate, today)
		if filter.Status != "" && standing.Category != filter.Status {
			continue
		}
		out = append(out, IssuedBookReportRow{
			TransactionID:   r.TransactionID,
			MemberID:        r.MemberID,
			MemberName:      memberName(r),
			BookID:          r.BookID,
			BookTitle:       r.BookTitle,
			ISBN:            deref(r.ISBN),
			TransactionDate: issued,
			DueDate:         r.DueDate,
			DaysOverdue:     standing.DaysOverdue,
			FineAmount:      r.FineAmount,
			Status:          standing.Label,
			IssuedBy:        deref(r.IssuedBy),
			Location:        deref(r.Location),
		})
	}
	return out, nil
}

// BulkReturnBooks returns each loan as of today. Loans already returned are
// skipped; other failures are logged and do not stop the batch.
func (s *reportService) BulkReturnBooks(ctx context.Context, ids []uuid.UUID) (BulkReturnResult, error) {
	var result BulkReturnResult
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		_, err := s.txns.ReturnBook(ctx, id, nil)
		switch {
		case err == nil:
			result.ReturnedCount++
			s.metrics.BatchItem("bulk_return", "returned")
		case errors.Is(err, ErrAlreadyReturned):
			s.metrics.BatchItem("bulk_return", "skipped")
		default:
			s.metrics.BatchItem("bulk_return", "failed")
			s.log.WithError(err).WithField("transaction_id", id).Error("BulkReturnBooks: error returning book")
		}
	}
	s.log.WithFields(logrus.Fields{
		"requested": len(ids),
		"returned":  result.ReturnedCount,
	}).Info("BulkReturnBooks: batch finished")
	return result, nil
}

// SendReminderEmails sends a return reminder for each open loan whose
// member has an email address. Failures are logged and skipped.
func (s *reportService) SendReminderEmails(ctx context.Context, ids []uuid.UUID) (ReminderResult, error) {
	var result ReminderResult
	db := s.conn(ctx)
	loans, err := s.openLoans(db, ids)
	if err != nil {
		s.log.WithError(err).Error("SendReminderEmails: report query failed")
		return result, err
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		sent, err := s.sendReminder(ctx, db, id, loans)
		switch {
		case err != nil:
			s.metrics.BatchItem("send_reminder", "failed")
			s.log.WithError(err).WithField("transaction_id", id).Error("SendReminderEmails: error sending reminder")
		case sent:
			result.SentCount++
			s.metrics.BatchItem("send_reminder", "sent")
		default:
			s.metrics.BatchItem("send_reminder", "skipped")
		}
	}
	s.log.WithFields(logrus.Fields{
		"requested": len(ids),
		"sent":      result.SentCount,
	}).Info("SendReminderEmails: batch finished")
	return result, nil
}

// SendOverdueReminders reminds every member holding an overdue book. It
// does nothing while email notifications are switched off.
func (s *reportService) SendOverdueReminders(ctx context.Context) (ReminderResult, error) {
	settings, err := s.loadSettings(s.conn(ctx))
	if err != nil {
		return ReminderResult{}, err
	}
	if !settings.EmailNotifications {
		s.log.Info("SendOverdueReminders: email notifications are disabled")
		return ReminderResult{}, nil
	}
	rows, err := s.IssuedBooks(ctx, IssuedBooksFilter{Status: policy.StatusOverdue})
	if err != nil {
		return ReminderResult{}, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.TransactionID)
	}
	return s.SendReminderEmails(ctx, ids)
}

func (s *reportService) sendReminder(ctx context.Context, db *gorm.DB, id uuid.UUID, loans map[uuid.UUID]repositories.IssuedBookRow) (bool, error) {
	loan, ok := loans[id]
	if !ok {
		if err := s.missingLoan(db, id); !errors.Is(err, ErrNotOpenIssue) {
			return false, err
		}
		s.log.WithField("transaction_id", id).Debug("SendReminderEmails: loan is not open")
		return false, nil
	}
	email := deref(loan.Email)
	if email == "" {
		s.log.WithField("member_id", loan.MemberID).Debug("SendReminderEmails: member has no email")
		return false, nil
	}

	args := map[string]any{
		"member_name":    memberName(loan),
		"book_title":     loan.BookTitle,
		"transaction_id": loan.TransactionID.String(),
		"days_overdue":   0,
	}
	if loan.DueDate != nil {
		args["due_date"] = loan.DueDate.Format(time.DateOnly)
		args["days_overdue"] = max(0, policy.DaysBetween(*loan.DueDate, s.today()))
	}
	err := s.notifier.Send(ctx, notify.Message{
		Recipient: email,
		Subject:   fmt.Sprintf("Reminder: Book Return Due - %s", loan.BookTitle),
		Template:  ReminderTemplate,
		Args:      args,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// GenerateFineReport totals the fines that the given loans would carry if
// they were returned today. Loans that are returned or not yet overdue are
// left out.
func (s *reportService) GenerateFineReport(ctx context.Context, ids []uuid.UUID) (*FineReport, error) {
	db := s.conn(ctx)
	p, err := s.loadPolicy(db)
	if err != nil {
		return nil, err
	}
	loans, err := s.openLoans(db, ids)
	if err != nil {
		s.log.WithError(err).Error("GenerateFineReport: report query failed")
		return nil, err
	}
	today := s.today()

	report := &FineReport{
		Success:         true,
		TotalFineAmount: decimal.Zero,
		Lines:           []FineReportLine{},
	}
	for _, id := range ids {
		loan, ok := loans[id]
		if !ok {
			if err := s.missingLoan(db, id); !errors.Is(err, ErrNotOpenIssue) {
				s.log.WithError(err).WithField("transaction_id", id).Error("GenerateFineReport: error generating fine report")
				return nil, err
			}
			continue
		}
		if loan.DueDate == nil || policy.DaysBetween(*loan.DueDate, today) <= 0 {
			continue
		}

		fine := p.Fine(*loan.DueDate, today)
		report.Lines = append(report.Lines, FineReportLine{
			TransactionID: loan.TransactionID,
			Member:        memberName(loan),
			MemberID:      loan.MemberID,
			BookTitle:     loan.BookTitle,
			DueDate:       *loan.DueDate,
			OverdueDays:   policy.DaysBetween(*loan.DueDate, today),
			FineAmount:    fine,
		})
		report.TotalFineAmount = report.TotalFineAmount.Add(fine)
	}
	report.TotalTransactions = len(report.Lines)
	report.ReportURL = fineReportURL(ids)
	return report, nil
}

// openLoans fetches the open loans among ids in one query, keyed by
// transaction id.
func (s *reportService) openLoans(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]repositories.IssuedBookRow, error) {
	loans := make(map[uuid.UUID]repositories.IssuedBookRow, len(ids))
	if len(ids) == 0 {
		return loans, nil
	}
	rows, err := s.repos.Reports.OpenIssues(db, repositories.IssuedBookQuery{TransactionIDs: ids})
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		loans[r.TransactionID] = r
	}
	return loans, nil
}

// missingLoan explains why id is not among the open loans.
func (s *reportService) missingLoan(db *gorm.DB, id uuid.UUID) error {
	if _, err := s.repos.Transactions.GetByID(db, id); err != nil {
		return notFound(err, ErrTransactionNotFound)
	}
	return ErrNotOpenIssue
}

func memberName(r repositories.IssuedBookRow) string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

func fineReportURL(ids []uuid.UUID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	q := url.Values{}
	q.Set("transaction_ids", strings.Join(parts, ","))
	return "/reports/fine-collection?" + q.Encode()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
