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
	"library_management/internal/repositories"
)

var fullContribution = decimal.NewFromInt(100)

// BookService manages book records and their copy counts.
type BookService interface {
	CreateBook(ctx context.Context, book *models.Book) (*models.Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, changes *models.Book) (*models.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)
	IsAvailable(ctx context.Context, id uuid.UUID) (bool, error)
	GetCurrentIssues(ctx context.Context, id uuid.UUID) ([]models.BookTransaction, error)
	RefreshAvailability(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

type bookService struct {
	*core
}

// CreateBook validates book and stores it with all copies available.
func (s *bookService) CreateBook(ctx context.Context, book *models.Book) (*models.Book, error) {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := s.validateBook(tx, book); err != nil {
			return err
		}
		book.ID = uuid.Nil
		book.AvailableCopies = book.TotalCopies
		if err := s.repos.Books.Create(tx, book); err != nil {
			s.log.WithError(err).Error("CreateBook: failed to create book record")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"book_id": book.ID,
		"title":   book.Title,
		"copies":  book.TotalCopies,
	}).Info("CreateBook: created book")
	return book, nil
}

// UpdateBook replaces the editable fields and the author list of a book.
// Available copies are recomputed against the open issues.
func (s *bookService) UpdateBook(ctx context.Context, id uuid.UUID, changes *models.Book) (*models.Book, error) {
	var updated *models.Book
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		book, err := s.repos.Books.GetByIDForUpdate(tx, id)
		if err != nil {
			return notFound(err, ErrBookNotFound)
		}
		if err := s.validateBook(tx, changes); err != nil {
			return err
		}

		open, err := s.repos.Transactions.CountOpenIssues(tx, repositories.TransactionFilter{BookID: &id})
		if err != nil {
			return err
		}
		if changes.TotalCopies < int(open) {
			s.log.WithFields(logrus.Fields{
				"book_id": id,
				"total":   changes.TotalCopies,
				"issued":  open,
			}).Warn("UpdateBook: total copies below issued copies")
			return fmt.Errorf("%w: %d copies are issued", ErrCopiesBelowIssued, open)
		}

		book.Title = changes.Title
		book.Subtitle = changes.Subtitle
		book.ISBN = changes.ISBN
		book.Edition = changes.Edition
		book.PublisherID = changes.PublisherID
		book.CategoryID = changes.CategoryID
		book.SubcategoryID = changes.SubcategoryID
		book.LanguageID = changes.LanguageID
		book.LocationID = changes.LocationID
		book.RackNumber = changes.RackNumber
		book.Condition = changes.Condition
		book.Price = changes.Price
		book.IsReferenceOnly = changes.IsReferenceOnly
		book.TotalCopies = changes.TotalCopies
		book.AvailableCopies = changes.TotalCopies - int(open)

		if err := s.repos.Books.Update(tx, book); err != nil {
			s.log.WithError(err).WithField("book_id", id).Error("UpdateBook: failed to save book")
			return err
		}
		if err := s.repos.Books.ReplaceAuthors(tx, id, changes.Authors); err != nil {
			s.log.WithError(err).WithField("book_id", id).Error("UpdateBook: failed to replace authors")
			return err
		}
		updated, err = s.repos.Books.GetByID(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("book_id", id).Info("UpdateBook: updated book")
	return updated, nil
}

func (s *bookService) GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	book, err := s.repos.Books.GetByID(s.conn(ctx), id)
	if err != nil {
		return nil, notFound(err, ErrBookNotFound)
	}
	return book, nil
}

func (s *bookService) ListBooks(ctx context.Context) ([]models.Book, error) {
	return s.repos.Books.List(s.conn(ctx))
}

func (s *bookService) IsAvailable(ctx context.Context, id uuid.UUID) (bool, error) {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return false, err
	}
	return book.IsAvailable(), nil
}

// GetCurrentIssues lists the loans currently holding a copy of the book.
func (s *bookService) GetCurrentIssues(ctx context.Context, id uuid.UUID) ([]models.BookTransaction, error) {
	if _, err := s.GetBook(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.Transactions.ListOpenIssues(s.conn(ctx), repositories.TransactionFilter{BookID: &id})
}

func (s *bookService) RefreshAvailability(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book *models.Book
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		book, err = s.refreshBook(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (s *bookService) validateBook(tx *gorm.DB, book *models.Book) error {
	book.Title = strings.TrimSpace(book.Title)
	if book.Title == "" {
		return ErrTitleRequired
	}
	if book.TotalCopies <= 0 {
		return ErrInvalidCopies
	}
	if book.Condition == "" {
		book.Condition = models.BookConditionGood
	}
	if err := s.validateAuthors(tx, book.Authors); err != nil {
		return err
	}
	return s.validateBookReferences(tx, book)
}

// validateAuthors requires a non-empty list of distinct, existing authors
// whose contributions add up to exactly 100 percent.
func (s *bookService) validateAuthors(tx *gorm.DB, authors []models.BookAuthor) error {
	if len(authors) == 0 {
		return ErrNoAuthors
	}
	seen := make(map[uuid.UUID]bool, len(authors))
	total := decimal.Zero
	for i := range authors {
		a := &authors[i]
		if seen[a.AuthorID] {
			return fmt.Errorf("%w: %s", ErrDuplicateAuthor, a.AuthorID)
		}
		seen[a.AuthorID] = true
		if _, err := s.repos.Authors.GetByID(tx, a.AuthorID); err != nil {
			return fmt.Errorf("%w: author %s", ErrUnknownReference, a.AuthorID)
		}
		if a.AuthorType == "" {
			a.AuthorType = models.AuthorTypePrimary
		}
		total = total.Add(a.ContributionPercentage)
	}
	if !total.Equal(fullContribution) {
		return fmt.Errorf("%w: got %s", ErrContributionSum, total.String())
	}
	return nil
}

func (s *bookService) validateBookReferences(tx *gorm.DB, book *models.Book) error {
	if book.PublisherID != nil {
		if _, err := s.repos.Publishers.GetByID(tx, *book.PublisherID); err != nil {
			return fmt.Errorf("%w: publisher %s", ErrUnknownReference, *book.PublisherID)
		}
	}
	if book.CategoryID != nil {
		if _, err := s.repos.Categories.GetByID(tx, *book.CategoryID); err != nil {
			return fmt.Errorf("%w: category %s", ErrUnknownReference, *book.CategoryID)
		}
	}
	if book.SubcategoryID != nil {
		sub, err := s.repos.Subcategories.GetByID(tx, *book.SubcategoryID)
		if err != nil {
			return fmt.Errorf("%w: subcategory %s", ErrUnknownReference, *book.SubcategoryID)
		}
		if book.CategoryID != nil && sub.CategoryID != *book.CategoryID {
			return fmt.Errorf("%w: subcategory %s is not in the book's category", ErrUnknownReference, sub.ID)
		}
	}
	if book.LanguageID != nil {
		if _, err := s.repos.Languages.GetByID(tx, *book.LanguageID); err != nil {
			return fmt.Errorf("%w: language %s", ErrUnknownReference, *book.LanguageID)
		}
	}
	if book.LocationID != nil {
		if _, err := s.repos.Locations.GetByID(tx, *book.LocationID); err != nil {
			return fmt.Errorf("%w: location %s", ErrUnknownReference, *book.LocationID)
		}
	}
	return nil
}
