package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library_management/internal/models"
	"library_management/internal/notify"
	"library_management/internal/repositories"
	"library_management/internal/services"
	"library_management/internal/testutil"
)

type fakeReports struct {
	services.ReportService
	actor  string
	result services.ReminderResult
	err    error
}

func (f *fakeReports) SendOverdueReminders(ctx context.Context) (services.ReminderResult, error) {
	f.actor = services.ActorFrom(ctx)
	return f.result, f.err
}

func TestReminderJobRunsAsScheduler(t *testing.T) {
	log, hook := test.NewNullLogger()
	reports := &fakeReports{result: services.ReminderResult{SentCount: 3}}

	got, err := NewReminderJob(reports, log).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, got.SentCount)
	assert.Equal(t, Actor, reports.actor)
	assert.Equal(t, "ReminderJob: overdue reminders sent", hook.LastEntry().Message)
}

func TestReminderJobLogsFailures(t *testing.T) {
	log, hook := test.NewNullLogger()
	reports := &fakeReports{err: errors.New("database is down")}

	NewReminderJob(reports, log).Run()
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestNewRejectsBadSchedule(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := New("every morning", NewReminderJob(&fakeReports{}, log), log)
	assert.Error(t, err)

	s, err := New("0 9 * * *", NewReminderJob(&fakeReports{}, log), log)
	require.NoError(t, err)
	s.Start()
	<-s.Stop().Done()
}

func TestReminderJobQueuesOverdueReminders(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	clock := testutil.NewClock(testutil.Date(2024, time.January, 1))
	log, _ := test.NewNullLogger()
	lib := services.NewLibrary(db, repos,
		services.WithClock(clock.Now),
		services.WithLogger(log),
		services.WithNotifier(notify.NewOutboxNotifier(db, repos.Notifications)),
	)
	ctx := context.Background()

	author := &models.Author{Name: "Tagore"}
	require.NoError(t, lib.Catalog.CreateAuthor(ctx, author))
	book, err := lib.Books.CreateBook(ctx, &models.Book{
		Title:       "Gitanjali",
		TotalCopies: 1,
		Authors:     []models.BookAuthor{{AuthorID: author.ID, ContributionPercentage: decimal.NewFromInt(100)}},
	})
	require.NoError(t, err)
	email := "asha@example.com"
	member, err := lib.Members.CreateMember(ctx, &models.LibraryMember{FirstName: "Asha", LastName: "Reader", Email: &email})
	require.NoError(t, err)
	_, err = lib.Transactions.IssueBook(ctx, member.ID, book.ID)
	require.NoError(t, err)

	clock.Set(testutil.Date(2024, time.January, 20))
	got, err := NewReminderJob(lib.Reports, log).RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SentCount)

	queued, err := repos.Notifications.ListByRecipient(db, email)
	require.NoError(t, err)
	assert.Len(t, queued, 1)
}
