package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"library_management/internal/models"
	"library_management/internal/repositories"
)

// CatalogService manages the reference records books point at.
type CatalogService interface {
	CreateAuthor(ctx context.Context, author *models.Author) error
	ListAuthors(ctx context.Context) ([]models.Author, error)
	GetAuthor(ctx context.Context, id uuid.UUID) (*models.Author, error)

	CreatePublisher(ctx context.Context, publisher *models.Publisher) error
	ListPublishers(ctx context.Context) ([]models.Publisher, error)
	GetPublisher(ctx context.Context, id uuid.UUID) (*models.Publisher, error)

	CreateCategory(ctx context.Context, category *models.BookCategory) error
	ListCategories(ctx context.Context) ([]models.BookCategory, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.BookCategory, error)

	CreateSubcategory(ctx context.Context, categoryID uuid.UUID, sub *models.BookSubcategory) error
	ListSubcategories(ctx context.Context, categoryID uuid.UUID) ([]models.BookSubcategory, error)

	CreateLanguage(ctx context.Context, language *models.Language) error
	ListLanguages(ctx context.Context) ([]models.Language, error)
	GetLanguage(ctx context.Context, id uuid.UUID) (*models.Language, error)

	CreateLocation(ctx context.Context, location *models.LibraryLocation) error
	ListLocations(ctx context.Context) ([]models.LibraryLocation, error)
	GetLocation(ctx context.Context, id uuid.UUID) (*models.LibraryLocation, error)
}

type catalogService struct {
	*core
}

func createRecord[T models.Named](ctx context.Context, c *core, kind string, repo repositories.CatalogRepository[T], record *T) error {
	if strings.TrimSpace((*record).DisplayName()) == "" {
		return ErrNameRequired
	}
	if err := repo.Create(c.conn(ctx), record); err != nil {
		if repositories.IsUniqueViolation(err) {
			c.log.WithField("name", (*record).DisplayName()).Warnf("Create%s: duplicate name", kind)
			return ErrDuplicate
		}
		c.log.WithError(err).Errorf("Create%s: failed to create record", kind)
		return err
	}
	c.log.WithField("name", (*record).DisplayName()).Infof("Create%s: created", kind)
	return nil
}

func getRecord[T any](ctx context.Context, c *core, repo repositories.CatalogRepository[T], id uuid.UUID) (*T, error) {
	record, err := repo.GetByID(c.conn(ctx), id)
	if err != nil {
		return nil, notFound(err, ErrRecordNotFound)
	}
	return record, nil
}

func (s *catalogService) CreateAuthor(ctx context.Context, author *models.Author) error {
	return createRecord(ctx, s.core, "Author", s.repos.Authors, author)
}

func (s *catalogService) ListAuthors(ctx context.Context) ([]models.Author, error) {
	return s.repos.Authors.List(s.conn(ctx))
}

func (s *catalogService) GetAuthor(ctx context.Context, id uuid.UUID) (*models.Author, error) {
	return getRecord(ctx, s.core, s.repos.Authors, id)
}

func (s *catalogService) CreatePublisher(ctx context.Context, publisher *models.Publisher) error {
	return createRecord(ctx, s.core, "Publisher", s.repos.Publishers, publisher)
}

func (s *catalogService) ListPublishers(ctx context.Context) ([]models.Publisher, error) {
	return s.repos.Publishers.List(s.conn(ctx))
}

func (s *catalogService) GetPublisher(ctx context.Context, id uuid.UUID) (*models.Publisher, error) {
	return getRecord(ctx, s.core, s.repos.Publishers, id)
}

func (s *catalogService) CreateCategory(ctx context.Context, category *models.BookCategory) error {
	return createRecord(ctx, s.core, "Category", s.repos.Categories, category)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]models.BookCategory, error) {
	return s.repos.Categories.List(s.conn(ctx))
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.BookCategory, error) {
	return getRecord(ctx, s.core, s.repos.Categories, id)
}

// CreateSubcategory files sub under an existing category.
func (s *catalogService) CreateSubcategory(ctx context.Context, categoryID uuid.UUID, sub *models.BookSubcategory) error {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		s.log.WithField("category_id", categoryID).WithError(err).Warn("CreateSubcategory: category lookup failed")
		return err
	}
	sub.CategoryID = categoryID
	return createRecord(ctx, s.core, "Subcategory", s.repos.Subcategories, sub)
}

func (s *catalogService) ListSubcategories(ctx context.Context, categoryID uuid.UUID) ([]models.BookSubcategory, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.repos.Subcategories.ListWhere(s.conn(ctx), "category_id", categoryID)
}

func (s *catalogService) CreateLanguage(ctx context.Context, language *models.Language) error {
	return createRecord(ctx, s.core, "Language", s.repos.Languages, language)
}

func (s *catalogService) ListLanguages(ctx context.Context) ([]models.Language, error) {
	return s.repos.Languages.List(s.conn(ctx))
}

func (s *catalogService) GetLanguage(ctx context.Context, id uuid.UUID) (*models.Language, error) {
	return getRecord(ctx, s.core, s.repos.Languages, id)
}

func (s *catalogService) CreateLocation(ctx context.Context, location *models.LibraryLocation) error {
	return createRecord(ctx, s.core, "Location", s.repos.Locations, location)
}

func (s *catalogService) ListLocations(ctx context.Context) ([]models.LibraryLocation, error) {
	return s.repos.Locations.List(s.conn(ctx))
}

func (s *catalogService) GetLocation(ctx context.Context, id uuid.UUID) (*models.LibraryLocation, error) {
	return getRecord(ctx, s.core, s.repos.Locations, id)
}
