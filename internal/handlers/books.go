package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library_management/internal/models"
)

func (h *LibraryHandler) createBook(c *gin.Context) {
	var req models.Book
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	book, err := h.lib.Books.CreateBook(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *LibraryHandler) listBooks(c *gin.Context) {
	books, err := h.lib.Books.ListBooks(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *LibraryHandler) getBook(c *gin.Context) {
	bookID, ok := paramID(c, "book")
	if !ok {
		return
	}

	book, err := h.lib.Books.GetBook(c.Request.Context(), bookID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *LibraryHandler) updateBook(c *gin.Context) {
	bookID, ok := paramID(c, "book")
	if !ok {
		return
	}
	var req models.Book
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	book, err := h.lib.Books.UpdateBook(c.Request.Context(), bookID, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *LibraryHandler) currentIssues(c *gin.Context) {
	bookID, ok := paramID(c, "book")
	if !ok {
		return
	}

	issues, err := h.lib.Books.GetCurrentIssues(c.Request.Context(), bookID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

type issueRequest struct {
	MemberID string `json:"member_id" binding:"required,uuid"`
}

// issueBook lends a copy to the member in one step.
func (h *LibraryHandler) issueBook(c *gin.Context) {
	bookID, ok := paramID(c, "book")
	if !ok {
		return
	}

	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		badRequest(c, "invalid member id")
		return
	}

	txn, err := h.lib.Transactions.IssueBook(c.Request.Context(), memberID, bookID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}
