package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library_management/internal/services"
)

func (h *LibraryHandler) issuedBooks(c *gin.Context) {
	memberID, ok := queryID(c, "member")
	if !ok {
		return
	}
	bookID, ok := queryID(c, "book")
	if !ok {
		return
	}
	from, ok := queryDate(c, "from_date")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to_date")
	if !ok {
		return
	}

	rows, err := h.lib.Reports.IssuedBooks(c.Request.Context(), services.IssuedBooksFilter{
		MemberID: memberID,
		BookID:   bookID,
		FromDate: from,
		ToDate:   to,
		Status:   c.Query("status"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

type transactionIDsRequest struct {
	TransactionIDs []string `json:"transaction_ids" binding:"required"`
}

// batch binds a list of transaction ids and runs op over them.
func batch[T any](h *LibraryHandler, c *gin.Context, op func(context.Context, []uuid.UUID) (T, error)) {
	var req transactionIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ids, err := parseIDs(req.TransactionIDs)
	if err != nil {
		badRequest(c, "invalid transaction id")
		return
	}

	result, err := op(c.Request.Context(), ids)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *LibraryHandler) sendReminders(c *gin.Context) {
	batch(h, c, h.lib.Reports.SendReminderEmails)
}

func (h *LibraryHandler) bulkReturn(c *gin.Context) {
	batch(h, c, h.lib.Reports.BulkReturnBooks)
}

func (h *LibraryHandler) fineReport(c *gin.Context) {
	batch(h, c, h.lib.Reports.GenerateFineReport)
}
