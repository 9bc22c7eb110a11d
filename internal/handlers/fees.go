package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library_management/internal/models"
)

type fineDetailRequest struct {
	TransactionID uuid.UUID `json:"transaction_id" binding:"required"`
}

type feeCollectionRequest struct {
	MemberID        uuid.UUID            `json:"member_id" binding:"required"`
	PaymentType     models.PaymentType   `json:"payment_type"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
	PaymentDate     *Date                `json:"payment_date"`
	ReferenceNumber string               `json:"reference_number"`
	MembershipFee   decimal.Decimal      `json:"membership_fee"`
	LateFee         decimal.Decimal      `json:"late_fee"`
	DamageFee       decimal.Decimal      `json:"damage_fee"`
	OtherFee        decimal.Decimal      `json:"other_fee"`
	FineAmount      decimal.Decimal      `json:"fine_amount"`
	DiscountAmount  decimal.Decimal      `json:"discount_amount"`
	Remarks         string               `json:"remarks"`
	FineDetails     []fineDetailRequest  `json:"fine_details" binding:"dive"`
}

func (r *feeCollectionRequest) model() *models.FeeCollection {
	fee := &models.FeeCollection{
		MemberID:        r.MemberID,
		PaymentType:     r.PaymentType,
		PaymentMethod:   r.PaymentMethod,
		ReferenceNumber: r.ReferenceNumber,
		MembershipFee:   r.MembershipFee,
		LateFee:         r.LateFee,
		DamageFee:       r.DamageFee,
		OtherFee:        r.OtherFee,
		FineAmount:      r.FineAmount,
		DiscountAmount:  r.DiscountAmount,
		Remarks:         r.Remarks,
	}
	if d := r.PaymentDate.Ptr(); d != nil {
		fee.PaymentDate = *d
	}
	for _, fd := range r.FineDetails {
		fee.FineDetails = append(fee.FineDetails, models.FeeCollectionFineDetail{TransactionID: fd.TransactionID})
	}
	return fee
}

func (h *LibraryHandler) createFeeCollection(c *gin.Context) {
	var req feeCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	fee, err := h.lib.Fees.CreateFeeCollection(c.Request.Context(), req.model())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, fee)
}

func (h *LibraryHandler) getFeeCollection(c *gin.Context) {
	feeID, ok := paramID(c, "fee collection")
	if !ok {
		return
	}

	fee, err := h.lib.Fees.GetFeeCollection(c.Request.Context(), feeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fee)
}

func (h *LibraryHandler) loadOutstandingFines(c *gin.Context) {
	feeID, ok := paramID(c, "fee collection")
	if !ok {
		return
	}

	fee, err := h.lib.Fees.LoadOutstandingFines(c.Request.Context(), feeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fee)
}

func (h *LibraryHandler) submitFeeCollection(c *gin.Context) {
	feeID, ok := paramID(c, "fee collection")
	if !ok {
		return
	}

	fee, err := h.lib.Fees.SubmitFeeCollection(c.Request.Context(), feeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fee)
}

func (h *LibraryHandler) cancelFeeCollection(c *gin.Context) {
	feeID, ok := paramID(c, "fee collection")
	if !ok {
		return
	}

	fee, err := h.lib.Fees.CancelFeeCollection(c.Request.Context(), feeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fee)
}
