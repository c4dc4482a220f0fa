// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tripline/travel-backend/internal/services"
	"github.com/tripline/travel-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /bookings/:id/deposit-intent
func (h *PaymentHandler) CreateDepositIntent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid booking id", nil)
		return
	}

	intent, err := h.paymentService.CreateDepositIntent(bookingID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}

// POST /bookings/:id/balance-intent
func (h *PaymentHandler) CreateBalanceIntent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid booking id", nil)
		return
	}

	intent, err := h.paymentService.CreateBalanceIntent(bookingID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}

// POST /payments/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req services.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	booking, warning, err := h.paymentService.ConfirmPayment(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if warning != "" {
		utils.SuccessResponse(c, gin.H{"booking": booking, "warning": warning})
		return
	}
	utils.SuccessResponse(c, booking)
}

// POST /admin/payments/refund
func (h *PaymentHandler) RefundBooking(c *gin.Context) {
	var req services.RefundBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	booking, err := h.paymentService.RefundBooking(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, booking)
}
