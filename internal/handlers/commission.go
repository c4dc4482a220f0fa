// internal/handlers/commission.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tripline/travel-backend/internal/services"
	"github.com/tripline/travel-backend/internal/utils"
)

type CommissionHandler struct {
	commissionService *services.CommissionService
}

func NewCommissionHandler(commissionService *services.CommissionService) *CommissionHandler {
	return &CommissionHandler{
		commissionService: commissionService,
	}
}

// PATCH /admin/bookings/:id/commission-payments
func (h *CommissionHandler) MarkPaid(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid booking id", nil)
		return
	}

	var req services.MarkCommissionPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	payment, err := h.commissionService.MarkPaid(bookingID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, payment)
}

// GET /admin/bookings/:id/commission-payments
func (h *CommissionHandler) GetBookingPayments(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid booking id", nil)
		return
	}

	payments, err := h.commissionService.GetBookingPayments(bookingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, payments)
}

// GET /seller/commissions
func (h *CommissionHandler) ListMyCommissions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	rows, total, err := h.commissionService.GetSellerCommissions(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(rows, total, params))
}

// GET /seller/earnings
func (h *CommissionHandler) GetMyEarnings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	earnings, err := h.commissionService.GetSellerEarnings(userID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, earnings)
}
