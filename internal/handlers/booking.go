// internal/handlers/booking.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tripline/travel-backend/internal/services"
	"github.com/tripline/travel-backend/internal/utils"
)

type BookingHandler struct {
	bookingService *services.BookingService
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// POST /bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	booking, err := h.bookingService.CreateBooking(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, booking)
}

// GET /bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid booking id", nil)
		return
	}

	booking, err := h.bookingService.GetBooking(bookingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Customers see only their own bookings; admins see all.
	userID, _ := currentUserID(c)
	userType, _ := utils.GetUserTypeFromContext(c)
	if userType != "admin" && booking.CustomerID != userID {
		if booking.SellerID == nil || *booking.SellerID != userID {
			utils.ForbiddenResponse(c, "")
			return
		}
	}

	utils.SuccessResponse(c, booking)
}

// GET /bookings
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	bookings, total, err := h.bookingService.GetCustomerBookings(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(bookings, total, params))
}

// PATCH /admin/bookings/:id/payment-status
func (h *BookingHandler) UpdatePaymentStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid booking id", nil)
		return
	}

	var req services.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	booking, warning, err := h.bookingService.UpdatePaymentStatus(bookingID, &req)
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

// DELETE /admin/bookings/:id
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid booking id", nil)
		return
	}

	if err := h.bookingService.DeleteBooking(bookingID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Booking deleted"})
}

// POST /bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
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

	booking, err := h.bookingService.CancelBooking(bookingID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, booking)
}
