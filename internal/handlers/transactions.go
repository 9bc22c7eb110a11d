package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library_management/internal/models"
	"library_management/internal/repositories"
)

type transactionRequest struct {
	BookID               uuid.UUID              `json:"book_id" binding:"required"`
	MemberID             uuid.UUID              `json:"member_id" binding:"required"`
	TransactionType      models.TransactionType `json:"transaction_type" binding:"required"`
	DueDate              *Date                  `json:"due_date"`
	ReturnDate           *Date                  `json:"return_date"`
	ConditionOnIssue     models.BookCondition   `json:"condition_on_issue"`
	ConditionOnReturn    models.BookCondition   `json:"condition_on_return"`
	AgainstTransactionID *uuid.UUID             `json:"against_transaction_id"`
	Notes                string                 `json:"notes"`
}

func (h *LibraryHandler) createTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	txn, err := h.lib.Transactions.CreateTransaction(c.Request.Context(), &models.BookTransaction{
		BookID:               req.BookID,
		MemberID:             req.MemberID,
		TransactionType:      req.TransactionType,
		DueDate:              req.DueDate.Ptr(),
		ReturnDate:           req.ReturnDate.Ptr(),
		ConditionOnIssue:     req.ConditionOnIssue,
		ConditionOnReturn:    req.ConditionOnReturn,
		AgainstTransactionID: req.AgainstTransactionID,
		Notes:                req.Notes,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func transactionFilter(c *gin.Context) (repositories.TransactionFilter, bool) {
	memberID, ok := queryID(c, "member_id")
	if !ok {
		return repositories.TransactionFilter{}, false
	}
	bookID, ok := queryID(c, "book_id")
	if !ok {
		return repositories.TransactionFilter{}, false
	}
	return repositories.TransactionFilter{MemberID: memberID, BookID: bookID}, true
}

func (h *LibraryHandler) listTransactions(c *gin.Context) {
	filter, ok := transactionFilter(c)
	if !ok {
		return
	}

	txns, err := h.lib.Transactions.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

func (h *LibraryHandler) issuedCount(c *gin.Context) {
	filter, ok := transactionFilter(c)
	if !ok {
		return
	}

	count, err := h.lib.Transactions.GetIssuedBookCount(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *LibraryHandler) getTransaction(c *gin.Context) {
	txnID, ok := paramID(c, "transaction")
	if !ok {
		return
	}

	txn, err := h.lib.Transactions.GetTransaction(c.Request.Context(), txnID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func (h *LibraryHandler) submitTransaction(c *gin.Context) {
	txnID, ok := paramID(c, "transaction")
	if !ok {
		return
	}

	txn, err := h.lib.Transactions.SubmitTransaction(c.Request.Context(), txnID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func (h *LibraryHandler) cancelTransaction(c *gin.Context) {
	txnID, ok := paramID(c, "transaction")
	if !ok {
		return
	}

	txn, err := h.lib.Transactions.CancelTransaction(c.Request.Context(), txnID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

type returnRequest struct {
	ReturnDate *Date `json:"return_date"`
}

// returnBook closes an open issue. The body is optional; without a
// return_date the book is returned today.
func (h *LibraryHandler) returnBook(c *gin.Context) {
	txnID, ok := paramID(c, "transaction")
	if !ok {
		return
	}
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err.Error())
		return
	}

	txn, err := h.lib.Transactions.ReturnBook(c.Request.Context(), txnID, req.ReturnDate.Ptr())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func (h *LibraryHandler) renewTransaction(c *gin.Context) {
	txnID, ok := paramID(c, "transaction")
	if !ok {
		return
	}

	txn, err := h.lib.Transactions.RenewTransaction(c.Request.Context(), txnID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}
