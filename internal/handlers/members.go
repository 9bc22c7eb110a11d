package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library_management/internal/models"
)

type memberRequest struct {
	FirstName           string                  `json:"first_name"`
	LastName            string                  `json:"last_name"`
	Email               *string                 `json:"email"`
	Phone               string                  `json:"phone"`
	Address             string                  `json:"address"`
	MemberType          models.MemberType       `json:"member_type"`
	MembershipStatus    models.MembershipStatus `json:"membership_status"`
	MembershipStartDate *Date                   `json:"membership_start_date"`
	MembershipEndDate   *Date                   `json:"membership_end_date"`
	MaxBooksAllowed     int                     `json:"max_books_allowed"`
}

func (r *memberRequest) model() *models.LibraryMember {
	return &models.LibraryMember{
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		Email:               r.Email,
		Phone:               r.Phone,
		Address:             r.Address,
		MemberType:          r.MemberType,
		MembershipStatus:    r.MembershipStatus,
		MembershipStartDate: r.MembershipStartDate.Ptr(),
		MembershipEndDate:   r.MembershipEndDate.Ptr(),
		MaxBooksAllowed:     r.MaxBooksAllowed,
	}
}

func (h *LibraryHandler) createMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	member, err := h.lib.Members.CreateMember(c.Request.Context(), req.model())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *LibraryHandler) listMembers(c *gin.Context) {
	members, err := h.lib.Members.ListMembers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *LibraryHandler) getMember(c *gin.Context) {
	memberID, ok := paramID(c, "member")
	if !ok {
		return
	}

	member, err := h.lib.Members.GetMember(c.Request.Context(), memberID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *LibraryHandler) updateMember(c *gin.Context) {
	memberID, ok := paramID(c, "member")
	if !ok {
		return
	}
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	member, err := h.lib.Members.UpdateMember(c.Request.Context(), memberID, req.model())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// refreshMember recomputes current_books_issued and total_fines.
func (h *LibraryHandler) refreshMember(c *gin.Context) {
	memberID, ok := paramID(c, "member")
	if !ok {
		return
	}

	member, err := h.lib.Members.RefreshStats(c.Request.Context(), memberID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *LibraryHandler) outstandingFines(c *gin.Context) {
	memberID, ok := paramID(c, "member")
	if !ok {
		return
	}

	fines, err := h.lib.Fees.GetOutstandingFines(c.Request.Context(), memberID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fines)
}

func (h *LibraryHandler) totalFines(c *gin.Context) {
	memberID, ok := paramID(c, "member")
	if !ok {
		return
	}

	total, err := h.lib.Transactions.GetTotalFines(c.Request.Context(), memberID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member_id": memberID, "total_fines": total})
}
