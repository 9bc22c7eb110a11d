package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"library_management/internal/models"
	"library_management/internal/repositories"
)

// Derived counters are never incremented. Each refresh recomputes them from
// the transaction table, so calling it again is always safe and repairs any
// drift.

// refreshBook locks the book row and recomputes available_copies as
// total_copies minus open issues. More open issues than copies is rejected
// before anything is written.
func (c *core) refreshBook(tx *gorm.DB, bookID uuid.UUID) (*models.Book, error) {
	book, err := c.repos.Books.GetByIDForUpdate(tx, bookID)
	if err != nil {
		return nil, notFound(err, ErrBookNotFound)
	}
	open, err := c.repos.Transactions.CountOpenIssues(tx, repositories.TransactionFilter{BookID: &bookID})
	if err != nil {
		return nil, err
	}
	available := book.TotalCopies - int(open)
	if available < 0 {
		return nil, fmt.Errorf("%w: %d open issues for %d copies", ErrBookUnavailable, open, book.TotalCopies)
	}
	if available != book.AvailableCopies {
		if err := c.repos.Books.SetAvailableCopies(tx, bookID, available); err != nil {
			return nil, err
		}
		c.log.WithFields(logrus.Fields{
			"book_id": bookID,
			"from":    book.AvailableCopies,
			"to":      available,
		}).Debug("refreshBook: available copies recomputed")
		book.AvailableCopies = available
	}
	return book, nil
}

// refreshMember recomputes current_books_issued and total_fines.
func (c *core) refreshMember(tx *gorm.DB, memberID uuid.UUID) (*models.LibraryMember, error) {
	member, err := c.repos.Members.GetByID(tx, memberID)
	if err != nil {
		return nil, notFound(err, ErrMemberNotFound)
	}
	if err := c.recomputeMemberStats(tx, member); err != nil {
		return nil, err
	}
	if err := c.repos.Members.SetStats(tx, memberID, member.CurrentBooksIssued, member.TotalFines); err != nil {
		return nil, err
	}
	return member, nil
}

// recomputeMemberStats fills the member's derived fields in memory.
func (c *core) recomputeMemberStats(tx *gorm.DB, member *models.LibraryMember) error {
	issued, err := c.repos.Transactions.CountOpenIssues(tx, repositories.TransactionFilter{MemberID: &member.ID})
	if err != nil {
		return err
	}
	fines, err := c.repos.Transactions.SumUnpaidFines(tx, member.ID)
	if err != nil {
		return err
	}
	member.CurrentBooksIssued = int(issued)
	member.TotalFines = fines
	return nil
}
