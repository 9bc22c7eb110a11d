package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"library_management/internal/metrics"
	"library_management/internal/notify"
	"library_management/internal/policy"
	"library_management/internal/repositories"
)

// SystemUser is recorded as the acting user when a request carries none.
const SystemUser = "system"

type actorKey struct{}

// WithActor attaches the acting user, recorded in issued_by, returned_to and
// collected_by.
func WithActor(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, actorKey{}, user)
}

// ActorFrom returns the acting user stored in ctx, or SystemUser.
func ActorFrom(ctx context.Context) string {
	if user, ok := ctx.Value(actorKey{}).(string); ok && user != "" {
		return user
	}
	return SystemUser
}

// Library groups the application services. All of them share one database
// handle, logger, clock and notifier.
type Library struct {
	Catalog      CatalogService
	Books        BookService
	Members      MemberService
	Transactions TransactionService
	Fees         FeeService
	Settings     SettingsService
	Reports      ReportService
}

type Option func(*core)

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *core) { c.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *core) { c.metrics = m }
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *core) { c.notifier = n }
}

// WithClock replaces time.Now; tests use it to pin "today".
func WithClock(now func() time.Time) Option {
	return func(c *core) { c.now = now }
}

// NewLibrary wires up all services over db and repos.
func NewLibrary(db *gorm.DB, repos repositories.Repositories, opts ...Option) *Library {
	c := &core{
		db:    db,
		repos: repos,
		log:   logrus.StandardLogger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = notify.NewLogNotifier(c.log)
	}

	txns := &transactionService{core: c}
	return &Library{
		Catalog:      &catalogService{core: c},
		Books:        &bookService{core: c},
		Members:      &memberService{core: c},
		Transactions: txns,
		Fees:         &feeService{core: c},
		Settings:     &settingsService{core: c},
		Reports:      &reportService{core: c, txns: txns},
	}
}

type core struct {
	db       *gorm.DB
	repos    repositories.Repositories
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	notifier notify.Notifier
	now      func() time.Time
}

func (c *core) today() time.Time {
	return policy.DateOf(c.now())
}

// transaction runs fn as one unit of work.
func (c *core) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.db.WithContext(ctx).Transaction(fn)
}

func (c *core) conn(ctx context.Context) *gorm.DB {
	return c.db.WithContext(ctx)
}

// notFound maps gorm's not-found error to the domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
