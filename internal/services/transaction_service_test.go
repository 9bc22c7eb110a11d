package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library_management/internal/models"
	"library_management/internal/repositories"
	"library_management/internal/services"
	"library_management/internal/testutil"
)

func TestIssueBookDefaultsAndCounters(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, "Gitanjali", 2)
	m := f.member(t, "Asha", "")

	txn := f.issue(t, m, book)
	assert.Equal(t, models.DocStatusSubmitted, txn.DocStatus)
	assertDate(t, testutil.Date(2024, time.January, 15), txn.DueDate)
	assert.Equal(t, "librarian@example.com", txn.IssuedBy)
	assert.Equal(t, models.BookConditionGood, txn.ConditionOnIssue)
	assert.True(t, txn.FineAmount.IsZero())

	assert.Equal(t, 1, f.reloadBook(t, book).AvailableCopies)
	assert.Equal(t, 1, f.reloadMember(t, m).CurrentBooksIssued)
}

func TestReturnFiveDaysLateChargesTen(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, "Gitanjali", 1)
	m := f.member(t, "Asha", "")
	txn := f.issue(t, m, book)

	f.today(2024, time.January, 20)
	returned, err := f.lib.Transactions.ReturnBook(f.ctx, txn.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, models.TransactionTypeReturn, returned.TransactionType)
	assertDate(t, testutil.Date(2024, time.January, 20), returned.ReturnDate)
	assert.Equal(t, "10.00", returned.FineAmount.StringFixed(2))
	assert.Equal(t, "librarian@example.com", returned.ReturnedTo)

	assert.Equal(t, 1, f.reloadBook(t, book).AvailableCopies)
	member := f.reloadMember(t, m)
	assert.Equal(t, 0, member.CurrentBooksIssued)
	assert.Equal(t, "10.00", member.TotalFines.StringFixed(2))

	total, err := f.lib.Transactions.GetTotalFines(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", total.StringFixed(2))
}

func TestReturnOnOrBeforeDueDateIsFree(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, "Gitanjali", 2)
	m := f.member(t, "Asha", "")
	first := f.issue(t, m, book)
	second := f.issue(t, m, book)

	onDue, err := f.lib.Transactions.ReturnBook(f.ctx, first.ID, datePtr(2024, time.January, 15))
	require.NoError(t, err)
	assert.True(t, onDue.FineAmount.IsZero())

	early, err := f.lib.Transactions.ReturnBook(f.ctx, second.ID, datePtr(2024, time.January, 3))
	require.NoError(t, err)
	assert.True(t, early.FineAmount.IsZero())
}

func TestReturnTwiceIsRejected(t *testing.T) {
	f := newFixture(t)
	txn := f.issue(t, f.member(t, "Asha", ""), f.book(t, "Gitanjali", 1))

	_, err := f.lib.Transactions.ReturnBook(f.ctx, txn.ID, nil)
	require.NoError(t, err)
	_, err = f.lib.Transactions.ReturnBook(f.ctx, txn.ID, nil)
	assert.ErrorIs(t, err, services.ErrAlreadyReturned)

	_, err = f.lib.Transactions.ReturnBook(f.ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, services.ErrTransactionNotFound)
}

func TestIssueLimitReached(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, "Gitanjali", 5)
	m, err := f.lib.Members.CreateMember(f.ctx, &models.LibraryMember{
		FirstName:       "Asha",
		LastName:        "Rao",
		MaxBooksAllowed: 2,
	})
	require.NoError(t, err)

	f.issue(t, m, book)
	f.issue(t, m, book)

	_, err = f.lib.Transactions.IssueBook(f.ctx, m.ID, book.ID)
	assert.ErrorIs(t, err, services.ErrIssueLimitReached)

	assert.Equal(t, 2, f.reloadMember(t, m).CurrentBooksIssued)
	assert.Equal(t, 3, f.reloadBook(t, book).AvailableCopies)
}

func TestIssueValidationChain(t *testing.T) {
	f := newFixture(t)

	t.Run("inactive member", func(t *testing.T) {
		m := f.member(t, "Suspended", "")
		m.MembershipStatus = models.MembershipStatusSuspended
		_, err := f.lib.Members.UpdateMember(f.ctx, m.ID, m)
		require.NoError(t, err)

		_, err = f.lib.Transactions.IssueBook(f.ctx, m.ID, f.book(t, "A", 1).ID)
		assert.ErrorIs(t, err, services.ErrMemberNotActive)
	})

	t.Run("expired membership", func(t *testing.T) {
		m, err := f.lib.Members.CreateMember(f.ctx, &models.LibraryMember{
			FirstName:           "Expired",
			LastName:            "Reader",
			MembershipStartDate: datePtr(2023, time.January, 1),
			MembershipEndDate:   datePtr(2023, time.December, 31),
		})
		require.NoError(t, err)

		_, err = f.lib.Transactions.IssueBook(f.ctx, m.ID, f.book(t, "B", 1).ID)
		assert.ErrorIs(t, err, services.ErrMembershipExpired)
	})

	t.Run("reference only", func(t *testing.T) {
		book := f.book(t, "Encyclopedia", 1)
		book.IsReferenceOnly = true
		_, err := f.lib.Books.UpdateBook(f.ctx, book.ID, book)
		require.NoError(t, err)

		_, err = f.lib.Transactions.IssueBook(f.ctx, f.member(t, "Ref", "").ID, book.ID)
		assert.ErrorIs(t, err, services.ErrReferenceOnly)
	})

	t.Run("no copies left", func(t *testing.T) {
		book := f.book(t, "C", 1)
		f.issue(t, f.member(t, "First", ""), book)

		_, err := f.lib.Transactions.IssueBook(f.ctx, f.member(t, "Second", "").ID, book.ID)
		assert.ErrorIs(t, err, services.ErrBookUnavailable)
	})

	t.Run("outstanding fines", func(t *testing.T) {
		m := f.member(t, "Late", "")
		txn := f.issue(t, m, f.book(t, "D", 1))
		_, err := f.lib.Transactions.ReturnBook(f.ctx, txn.ID, datePtr(2024, time.January, 16))
		require.NoError(t, err)

		_, err = f.lib.Transactions.IssueBook(f.ctx, m.ID, f.book(t, "E", 1).ID)
		assert.ErrorIs(t, err, services.ErrOutstandingFines)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := f.lib.Transactions.IssueBook(f.ctx, uuid.New(), f.book(t, "F", 1).ID)
		assert.ErrorIs(t, err, services.ErrMemberNotFound)
	})
}

func TestDraftSubmitCancelLifecycle(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, "Gitanjali", 1)
	m := f.member(t, "Asha", "")

	draft, err := f.lib.Transactions.CreateTransaction(f.ctx, &models.BookTransaction{
		MemberID:        m.ID,
		BookID:          book.ID,
		TransactionType: models.TransactionTypeIssue,
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusDraft, draft.DocStatus)
	assert.Equal(t, 1, f.reloadBook(t, book).AvailableCopies, "drafts hold no copy")

	submitted, err := f.lib.Transactions.SubmitTransaction(f.ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusSubmitted, submitted.DocStatus)
	assert.Equal(t, 0, f.reloadBook(t, book).AvailableCopies)

	_, err = f.lib.Transactions.SubmitTransaction(f.ctx, draft.ID)
	assert.ErrorIs(t, err, services.ErrInvalidDocState)

	cancelled, err := f.lib.Transactions.CancelTransaction(f.ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusCancelled, cancelled.DocStatus)
	assert.Equal(t, 1, f.reloadBook(t, book).AvailableCopies)
	assert.Equal(t, 0, f.reloadMember(t, m).CurrentBooksIssued)

	_, err = f.lib.Transactions.CancelTransaction(f.ctx, draft.ID)
	assert.ErrorIs(t, err, services.ErrInvalidDocState)
}

func TestSubmitRevalidatesAgainstFreshState(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, "Gitanjali", 1)

	draft, err := f.lib.Transactions.CreateTransaction(f.ctx, &models.BookTransaction{
		MemberID:        f.member(t, "Asha", "").ID,
		BookID:          book.ID,
		TransactionType: models.TransactionTypeIssue,
	})
	require.NoError(t, err)

	f.issue(t, f.member(t, "Ravi", ""), book)

	_, err = f.lib.Transactions.SubmitTransaction(f.ctx, draft.ID)
	assert.ErrorIs(t, err, services.ErrBookUnavailable)
}

func TestStandaloneReturnClosesIssueAndCancelReopensIt(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, "Gitanjali", 1)
	m := f.member(t, "Asha", "")
	issue := f.issue(t, m, book)

	f.today(2024, time.January, 20)
	ret, err := f.lib.Transactions.CreateTransaction(f.ctx, &models.BookTransaction{
		MemberID:        m.ID,
		BookID:          book.ID,
		TransactionType: models.TransactionTypeReturn,
	})
	require.NoError(t, err)
	assertDate(t, testutil.Date(2024, time.January, 15), ret.DueDate)
	assert.Equal(t, "10.00", ret.FineAmount.StringFixed(2))

	ret, err = f.lib.Transactions.SubmitTransaction(f.ctx, ret.ID)
	require.NoError(t, err)
	require.NotNil(t, ret.AgainstTransactionID)
	assert.Equal(t, issue.ID, *ret.AgainstTransactionID)

	closed, err := f.lib.Transactions.GetTransaction(f.ctx, issue.ID)
	require.NoError(t, err)
	assert.NotNil(t, closed.ReturnDate)
	assert.Equal(t, 1, f.reloadBook(t, book).AvailableCopies)
	assert.Equal(t, "10.00", f.reloadMember(t, m).TotalFines.StringFixed(2))

	_, err = f.lib.Transactions.CancelTransaction(f.ctx, issue.ID)
	assert.ErrorIs(t, err, services.ErrInvalidDocState, "issue is referenced by a submitted return")

	_, err = f.lib.Transactions.CancelTransaction(f.ctx, ret.ID)
	require.NoError(t, err)

	reopened, err := f.lib.Transactions.GetTransaction(f.ctx, issue.ID)
	require.NoError(t, err)
	assert.Nil(t, reopened.ReturnDate)
	assert.Equal(t, 0, f.reloadBook(t, book).AvailableCopies)
	member := f.reloadMember(t, m)
	assert.Equal(t, 1, member.CurrentBooksIssued)
	assert.True(t, member.TotalFines.IsZero())
}

func TestCancelReturnRefusedWhenTheCopyIsLentAgain(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, "Gitanjali", 1)
	asha := f.member(t, "Asha", "")
	first := f.issue(t, asha, book)

	ret, err := f.lib.Transactions.CreateTransaction(f.ctx, &models.BookTransaction{
		MemberID:        asha.ID,
		BookID:          book.ID,
		TransactionType: models.TransactionTypeReturn,
	})
	require.NoError(t, err)
	ret, err = f.lib.Transactions.SubmitTransaction(f.ctx, ret.ID)
	require.NoError(t, err)

	f.issue(t, f.member(t, "Ravi", ""), book)
	require.Equal(t, 0, f.reloadBook(t, book).AvailableCopies)

	_, err = f.lib.Transactions.CancelTransaction(f.ctx, ret.ID)
	assert.ErrorIs(t, err, services.ErrBookUnavailable)

	still, err := f.lib.Transactions.GetTransaction(f.ctx, ret.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusSubmitted, still.DocStatus)
	closed, err := f.lib.Transactions.GetTransaction(f.ctx, first.ID)
	require.NoError(t, err)
	assert.NotNil(t, closed.ReturnDate, "the first loan stays returned")
	assert.Equal(t, 0, f.reloadBook(t, book).AvailableCopies)
}

func TestStandaloneReturnNeedsAnOpenIssue(t *testing.T) {
	f := newFixture(t)

	_, err := f.lib.Transactions.CreateTransaction(f.ctx, &models.BookTransaction{
		MemberID:        f.member(t, "Asha", "").ID,
		BookID:          f.book(t, "Gitanjali", 1).ID,
		TransactionType: models.TransactionTypeReturn,
	})
	assert.ErrorIs(t, err, services.ErrNotOpenIssue)

	_, err = f.lib.Transactions.CreateTransaction(f.ctx, &models.BookTransaction{TransactionType: "Lend"})
	assert.ErrorIs(t, err, services.ErrInvalidTransaction)
}

func TestRenewTransaction(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, "Gitanjali", 1)
	m := f.member(t, "Asha", "")
	txn := f.issue(t, m, book)

	f.today(2024, time.January, 10)
	renewed, err := f.lib.Transactions.RenewTransaction(f.ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, renewed.RenewedCount)
	assertDate(t, testutil.Date(2024, time.January, 24), renewed.DueDate)

	f.today(2024, time.January, 30)
	_, err = f.lib.Transactions.RenewTransaction(f.ctx, txn.ID)
	assert.ErrorIs(t, err, services.ErrOverdueRenewal)

	_, err = f.lib.Transactions.ReturnBook(f.ctx, txn.ID, nil)
	require.NoError(t, err)
	_, err = f.lib.Transactions.RenewTransaction(f.ctx, txn.ID)
	assert.ErrorIs(t, err, services.ErrAlreadyReturned)
}

func TestRenewDocumentExtendsTheIssue(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, "Gitanjali", 1)
	m := f.member(t, "Asha", "")
	issue := f.issue(t, m, book)

	f.today(2024, time.January, 12)
	doc, err := f.lib.Transactions.CreateTransaction(f.ctx, &models.BookTransaction{
		MemberID:        m.ID,
		BookID:          book.ID,
		TransactionType: models.TransactionTypeRenew,
	})
	require.NoError(t, err)
	doc, err = f.lib.Transactions.SubmitTransaction(f.ctx, doc.ID)
	require.NoError(t, err)
	assertDate(t, testutil.Date(2024, time.January, 26), doc.DueDate)

	got, err := f.lib.Transactions.GetTransaction(f.ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RenewedCount)
	assertDate(t, testutil.Date(2024, time.January, 26), got.DueDate)
	assert.Equal(t, 0, f.reloadBook(t, book).AvailableCopies)

	_, err = f.lib.Transactions.CancelTransaction(f.ctx, doc.ID)
	assert.ErrorIs(t, err, services.ErrInvalidDocState)
}

func TestReserveRespectsSettings(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, "Gitanjali", 1)
	m := f.member(t, "Asha", "")

	reserve := func() (*models.BookTransaction, error) {
		return f.lib.Transactions.CreateTransaction(f.ctx, &models.BookTransaction{
			MemberID:        m.ID,
			BookID:          book.ID,
			TransactionType: models.TransactionTypeReserve,
		})
	}

	doc, err := reserve()
	require.NoError(t, err)
	_, err = f.lib.Transactions.SubmitTransaction(f.ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.reloadBook(t, book).AvailableCopies)
	assert.Equal(t, 0, f.reloadMember(t, m).CurrentBooksIssued)

	settings := services.DefaultSettings()
	settings.EnableReservations = false
	_, err = f.lib.Settings.Update(f.ctx, settings)
	require.NoError(t, err)

	_, err = reserve()
	assert.ErrorIs(t, err, services.ErrReservationsDisabled)
}

func TestIssuedCountAndListing(t *testing.T) {
	f := newFixture(t)
	a, b := f.book(t, "A", 3), f.book(t, "B", 3)
	asha, ravi := f.member(t, "Asha", ""), f.member(t, "Ravi", "")

	f.issue(t, asha, a)
	f.issue(t, asha, b)
	txn := f.issue(t, ravi, a)
	_, err := f.lib.Transactions.ReturnBook(f.ctx, txn.ID, nil)
	require.NoError(t, err)

	count := func(filter repositories.TransactionFilter) int64 {
		n, err := f.lib.Transactions.GetIssuedBookCount(f.ctx, filter)
		require.NoError(t, err)
		return n
	}
	assert.EqualValues(t, 2, count(repositories.TransactionFilter{}))
	assert.EqualValues(t, 2, count(repositories.TransactionFilter{MemberID: &asha.ID}))
	assert.EqualValues(t, 1, count(repositories.TransactionFilter{BookID: &a.ID}))
	assert.EqualValues(t, 0, count(repositories.TransactionFilter{MemberID: &ravi.ID}))

	all, err := f.lib.Transactions.ListTransactions(f.ctx, repositories.TransactionFilter{BookID: &a.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.lib.Transactions.GetTotalFines(f.ctx, uuid.New())
	assert.ErrorIs(t, err, services.ErrMemberNotFound)
}
