package services

import "errors"

// ─── Not Found ────────────────────────────────────────────────────────────────

var (
	// ErrBookNotFound is returned when the requested book does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrMemberNotFound is returned when the referenced library member does not exist.
	ErrMemberNotFound = errors.New("member not found")

	// ErrTransactionNotFound is returned when the referenced book transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrFeeCollectionNotFound is returned when the referenced fee collection does not exist.
	ErrFeeCollectionNotFound = errors.New("fee collection not found")

	// ErrRecordNotFound is returned for missing catalog records.
	ErrRecordNotFound = errors.New("record not found")
)

// ─── Validation ───────────────────────────────────────────────────────────────

var (
	ErrNameRequired          = errors.New("name is required")
	ErrTitleRequired         = errors.New("title is required")
	ErrNoAuthors             = errors.New("at least one author is required")
	ErrDuplicateAuthor       = errors.New("author is listed more than once")
	ErrContributionSum       = errors.New("author contribution percentages must add up to 100")
	ErrUnknownReference      = errors.New("referenced record does not exist")
	ErrInvalidCopies         = errors.New("total copies must be greater than zero")
	ErrCopiesBelowIssued     = errors.New("total copies cannot be fewer than the copies currently issued")
	ErrMemberNameRequired    = errors.New("first name and last name are required")
	ErrInvalidMembershipDate = errors.New("membership end date is before start date")
	ErrInvalidMemberStatus   = errors.New("unknown membership status")
	ErrInvalidMemberType     = errors.New("unknown member type")
	ErrInvalidTransaction    = errors.New("invalid transaction")

	// ErrMemberNotActive is returned when a member whose status is not Active tries to borrow.
	ErrMemberNotActive = errors.New("member is not active")

	// ErrMembershipExpired is returned when the member's end date has passed.
	ErrMembershipExpired = errors.New("membership has expired")

	// ErrReferenceOnly is returned when a reference-only book is issued.
	ErrReferenceOnly = errors.New("book is reference only and cannot be issued")

	// ErrBookUnavailable is returned when every copy of the book is already issued.
	ErrBookUnavailable = errors.New("book is not available, all copies are issued")

	// ErrIssueLimitReached is returned when the member already holds max_books_allowed books.
	ErrIssueLimitReached = errors.New("member has reached maximum book issue limit")

	// ErrOutstandingFines is returned when a member with unpaid fines tries to borrow.
	ErrOutstandingFines = errors.New("member has outstanding fines, please clear fines before issuing new books")

	ErrReservationsDisabled  = errors.New("reservations are disabled")
	ErrOverdueRenewal        = errors.New("overdue books must be returned before they can be renewed")
	ErrReferenceRequired     = errors.New("reference number is required for non-cash payments")
	ErrNonPositiveNetAmount  = errors.New("net amount must be greater than zero")
	ErrFineNotPayable        = errors.New("fine cannot be collected for this transaction")
	ErrInvalidSettings       = errors.New("invalid library settings")
	ErrInvalidPaymentDetails = errors.New("invalid payment details")
	ErrInvalidReportFilter   = errors.New("invalid report filter")
)

// ─── Conflicts ────────────────────────────────────────────────────────────────

var (
	// ErrAlreadyReturned is returned when a return is attempted on a loan that
	// has already been closed.
	ErrAlreadyReturned = errors.New("book has already been returned")

	// ErrNotOpenIssue is returned when an operation needs an open issue.
	ErrNotOpenIssue = errors.New("transaction is not an open issue")

	// ErrInvalidDocState is returned for lifecycle moves that the document's
	// current status does not allow (e.g. cancelling a draft).
	ErrInvalidDocState = errors.New("operation not allowed in the document's current status")

	ErrDuplicate = errors.New("a record with the same unique value already exists")
)
