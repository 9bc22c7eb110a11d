package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"library_management/internal/models"
	"library_management/internal/notify"
	"library_management/internal/repositories"
	"library_management/internal/services"
	"library_management/internal/testutil"
)

// fixture is a library over a fresh database with the clock pinned to
// 2024-01-01 10:00 UTC.
type fixture struct {
	db    *gorm.DB
	repos repositories.Repositories
	lib   *services.Library
	clock *testutil.Clock
	hook  *test.Hook
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	clock := testutil.NewClock(testutil.Date(2024, time.January, 1).Add(10 * time.Hour))
	log, hook := test.NewNullLogger()

	lib := services.NewLibrary(db, repos,
		services.WithClock(clock.Now),
		services.WithLogger(log),
		services.WithNotifier(notify.NewOutboxNotifier(db, repos.Notifications)),
	)
	return &fixture{
		db:    db,
		repos: repos,
		lib:   lib,
		clock: clock,
		hook:  hook,
		ctx:   services.WithActor(context.Background(), "librarian@example.com"),
	}
}

// today moves the clock to 10:00 UTC on the given day.
func (f *fixture) today(y int, m time.Month, d int) {
	f.clock.Set(testutil.Date(y, m, d).Add(10 * time.Hour))
}

func (f *fixture) author(t *testing.T, name string) *models.Author {
	t.Helper()
	a := &models.Author{Name: name}
	require.NoError(t, f.lib.Catalog.CreateAuthor(f.ctx, a))
	return a
}

func (f *fixture) book(t *testing.T, title string, copies int) *models.Book {
	t.Helper()
	a := f.author(t, title+" Author")
	b, err := f.lib.Books.CreateBook(f.ctx, &models.Book{
		Title:       title,
		TotalCopies: copies,
		Price:       decimal.NewFromInt(250),
		Authors: []models.BookAuthor{
			{AuthorID: a.ID, ContributionPercentage: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) member(t *testing.T, first, email string) *models.LibraryMember {
	t.Helper()
	m := &models.LibraryMember{FirstName: first, LastName: "Reader"}
	if email != "" {
		m.Email = &email
	}
	m, err := f.lib.Members.CreateMember(f.ctx, m)
	require.NoError(t, err)
	return m
}

func (f *fixture) issue(t *testing.T, member *models.LibraryMember, book *models.Book) *models.BookTransaction {
	t.Helper()
	txn, err := f.lib.Transactions.IssueBook(f.ctx, member.ID, book.ID)
	require.NoError(t, err)
	return txn
}

func (f *fixture) reloadBook(t *testing.T, id *models.Book) *models.Book {
	t.Helper()
	b, err := f.lib.Books.GetBook(f.ctx, id.ID)
	require.NoError(t, err)
	return b
}

func (f *fixture) reloadMember(t *testing.T, m *models.LibraryMember) *models.LibraryMember {
	t.Helper()
	got, err := f.lib.Members.GetMember(f.ctx, m.ID)
	require.NoError(t, err)
	return got
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := testutil.Date(y, m, d)
	return &t
}

func assertDate(t *testing.T, want time.Time, got *time.Time) {
	t.Helper()
	if assert.NotNil(t, got) {
		assert.True(t, want.Equal(*got), "want %s, got %s", want.Format(time.DateOnly), got.Format(time.DateOnly))
	}
}
