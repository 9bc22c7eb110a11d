package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"library_management/internal/metrics"
	"library_management/internal/services"
)

// ActorHeader carries the acting librarian.
const ActorHeader = "X-Library-User"

const dateLayout = "2006-01-02"

type LibraryHandler struct {
	lib *services.Library
	log logrus.FieldLogger
}

// NewRouter builds the gin engine with logging, metrics and actor
// middleware, the ops endpoints and every library route.
func NewRouter(lib *services.Library, log logrus.FieldLogger, m *metrics.Metrics, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), instrument(m), actor())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	RegisterRoutes(r, lib, log)
	return r
}

func RegisterRoutes(r gin.IRouter, lib *services.Library, log logrus.FieldLogger) {
	h := &LibraryHandler{lib: lib, log: log}

	// Catalog
	r.POST("/authors", h.createAuthor)
	r.GET("/authors", h.listAuthors)
	r.GET("/authors/:id", h.getAuthor)
	r.POST("/publishers", h.createPublisher)
	r.GET("/publishers", h.listPublishers)
	r.GET("/publishers/:id", h.getPublisher)
	r.POST("/categories", h.createCategory)
	r.GET("/categories", h.listCategories)
	r.GET("/categories/:id", h.getCategory)
	r.POST("/categories/:id/subcategories", h.createSubcategory)
	r.GET("/categories/:id/subcategories", h.listSubcategories)
	r.POST("/languages", h.createLanguage)
	r.GET("/languages", h.listLanguages)
	r.GET("/languages/:id", h.getLanguage)
	r.POST("/locations", h.createLocation)
	r.GET("/locations", h.listLocations)
	r.GET("/locations/:id", h.getLocation)

	// Books
	r.POST("/books", h.createBook)
	r.GET("/books", h.listBooks)
	r.GET("/books/:id", h.getBook)
	r.PUT("/books/:id", h.updateBook)
	r.GET("/books/:id/current-issues", h.currentIssues)
	r.POST("/books/:id/issue", h.issueBook)

	// Members
	r.POST("/members", h.createMember)
	r.GET("/members", h.listMembers)
	r.GET("/members/:id", h.getMember)
	r.PUT("/members/:id", h.updateMember)
	r.POST("/members/:id/refresh", h.refreshMember)
	r.GET("/members/:id/outstanding-fines", h.outstandingFines)
	r.GET("/members/:id/total-fines", h.totalFines)

	// Transactions
	r.POST("/transactions", h.createTransaction)
	r.GET("/transactions", h.listTransactions)
	r.GET("/transactions/issued-count", h.issuedCount)
	r.GET("/transactions/:id", h.getTransaction)
	r.POST("/transactions/:id/submit", h.submitTransaction)
	r.POST("/transactions/:id/cancel", h.cancelTransaction)
	r.POST("/transactions/:id/return", h.returnBook)
	r.POST("/transactions/:id/renew", h.renewTransaction)

	// Fee collections
	r.POST("/fee-collections", h.createFeeCollection)
	r.GET("/fee-collections/:id", h.getFeeCollection)
	r.POST("/fee-collections/:id/load-outstanding-fines", h.loadOutstandingFines)
	r.POST("/fee-collections/:id/submit", h.submitFeeCollection)
	r.POST("/fee-collections/:id/cancel", h.cancelFeeCollection)

	// Settings
	r.GET("/settings", h.getSettings)
	r.PUT("/settings", h.updateSettings)
	r.GET("/settings/open", h.isOpen)

	// Reports
	r.GET("/reports/issued-books", h.issuedBooks)
	r.POST("/reports/issued-books/send-reminders", h.sendReminders)
	r.POST("/reports/issued-books/bulk-return", h.bulkReturn)
	r.POST("/reports/issued-books/fine-report", h.fineReport)
}

var (
	notFoundErrors = []error{
		services.ErrBookNotFound,
		services.ErrMemberNotFound,
		services.ErrTransactionNotFound,
		services.ErrFeeCollectionNotFound,
		services.ErrRecordNotFound,
	}
	conflictErrors = []error{
		services.ErrAlreadyReturned,
		services.ErrNotOpenIssue,
		services.ErrInvalidDocState,
		services.ErrDuplicate,
	}
	badRequestErrors = []error{
		services.ErrInvalidReportFilter,
	}
	validationErrors = []error{
		services.ErrNameRequired,
		services.ErrTitleRequired,
		services.ErrNoAuthors,
		services.ErrDuplicateAuthor,
		services.ErrContributionSum,
		services.ErrUnknownReference,
		services.ErrInvalidCopies,
		services.ErrCopiesBelowIssued,
		services.ErrMemberNameRequired,
		services.ErrInvalidMembershipDate,
		services.ErrInvalidMemberStatus,
		services.ErrInvalidMemberType,
		services.ErrInvalidTransaction,
		services.ErrMemberNotActive,
		services.ErrMembershipExpired,
		services.ErrReferenceOnly,
		services.ErrBookUnavailable,
		services.ErrIssueLimitReached,
		services.ErrOutstandingFines,
		services.ErrReservationsDisabled,
		services.ErrOverdueRenewal,
		services.ErrReferenceRequired,
		services.ErrNonPositiveNetAmount,
		services.ErrFineNotPayable,
		services.ErrInvalidSettings,
		services.ErrInvalidPaymentDetails,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func statusFor(err error) int {
	switch {
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case isAny(err, conflictErrors):
		return http.StatusConflict
	case isAny(err, badRequestErrors):
		return http.StatusBadRequest
	case isAny(err, validationErrors):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Internal errors are logged and
// hidden from the client.
func (h *LibraryHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("route", c.FullPath()).Error("request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func paramID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid "+what+" id")
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional uuid query parameter.
func queryID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "invalid "+key)
		return nil, false
	}
	return &id, true
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		badRequest(c, "invalid "+key+", expected YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
