package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library_management/internal/models"
)

// createHandler binds a catalog record and stores it with create.
func createHandler[T any](h *LibraryHandler, create func(context.Context, *T) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		var record T
		if err := c.ShouldBindJSON(&record); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := create(c.Request.Context(), &record); err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, &record)
	}
}

func listHandler[T any](h *LibraryHandler, list func(context.Context) ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := list(c.Request.Context())
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func getHandler[T any](h *LibraryHandler, what string, get func(context.Context, uuid.UUID) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, what)
		if !ok {
			return
		}
		record, err := get(c.Request.Context(), id)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

func (h *LibraryHandler) createAuthor(c *gin.Context) {
	createHandler[models.Author](h, h.lib.Catalog.CreateAuthor)(c)
}

func (h *LibraryHandler) listAuthors(c *gin.Context) {
	listHandler(h, h.lib.Catalog.ListAuthors)(c)
}

func (h *LibraryHandler) getAuthor(c *gin.Context) {
	getHandler(h, "author", h.lib.Catalog.GetAuthor)(c)
}

func (h *LibraryHandler) createPublisher(c *gin.Context) {
	createHandler[models.Publisher](h, h.lib.Catalog.CreatePublisher)(c)
}

func (h *LibraryHandler) listPublishers(c *gin.Context) {
	listHandler(h, h.lib.Catalog.ListPublishers)(c)
}

func (h *LibraryHandler) getPublisher(c *gin.Context) {
	getHandler(h, "publisher", h.lib.Catalog.GetPublisher)(c)
}

func (h *LibraryHandler) createCategory(c *gin.Context) {
	createHandler[models.BookCategory](h, h.lib.Catalog.CreateCategory)(c)
}

func (h *LibraryHandler) listCategories(c *gin.Context) {
	listHandler(h, h.lib.Catalog.ListCategories)(c)
}

func (h *LibraryHandler) getCategory(c *gin.Context) {
	getHandler(h, "category", h.lib.Catalog.GetCategory)(c)
}

func (h *LibraryHandler) createSubcategory(c *gin.Context) {
	categoryID, ok := paramID(c, "category")
	if !ok {
		return
	}
	var sub models.BookSubcategory
	if err := c.ShouldBindJSON(&sub); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.lib.Catalog.CreateSubcategory(c.Request.Context(), categoryID, &sub); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *LibraryHandler) listSubcategories(c *gin.Context) {
	categoryID, ok := paramID(c, "category")
	if !ok {
		return
	}
	subs, err := h.lib.Catalog.ListSubcategories(c.Request.Context(), categoryID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (h *LibraryHandler) createLanguage(c *gin.Context) {
	createHandler[models.Language](h, h.lib.Catalog.CreateLanguage)(c)
}

func (h *LibraryHandler) listLanguages(c *gin.Context) {
	listHandler(h, h.lib.Catalog.ListLanguages)(c)
}

func (h *LibraryHandler) getLanguage(c *gin.Context) {
	getHandler(h, "language", h.lib.Catalog.GetLanguage)(c)
}

func (h *LibraryHandler) createLocation(c *gin.Context) {
	createHandler[models.LibraryLocation](h, h.lib.Catalog.CreateLocation)(c)
}

func (h *LibraryHandler) listLocations(c *gin.Context) {
	listHandler(h, h.lib.Catalog.ListLocations)(c)
}

func (h *LibraryHandler) getLocation(c *gin.Context) {
	getHandler(h, "location", h.lib.Catalog.GetLocation)(c)
}
