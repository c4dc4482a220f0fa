// internal/handlers/seller.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tripline/travel-backend/internal/services"
	"github.com/tripline/travel-backend/internal/utils"
)

type SellerHandler struct {
	sellerService  *services.SellerService
	bookingService *services.BookingService
	storageService *services.StorageService
}

type rejectSellerRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func NewSellerHandler(sellerService *services.SellerService, bookingService *services.BookingService, storageService *services.StorageService) *SellerHandler {
	return &SellerHandler{
		sellerService:  sellerService,
		bookingService: bookingService,
		storageService: storageService,
	}
}

// GET /seller/profile
func (h *SellerHandler) GetMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	profile, err := h.sellerService.GetProfile(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, profile)
}

// GET /seller/bookings
func (h *SellerHandler) ListMyBookings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	bookings, total, err := h.bookingService.GetSellerBookings(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(bookings, total, params))
}

// POST /seller/documents
func (h *SellerHandler) UploadDocument(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "file is required", nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadFile(file, header, h.storageService.GetDefaultUploadOptions("seller_documents"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	existing, err := h.sellerService.GetProfile(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	previousURL := existing.DocumentURL

	profile, err := h.sellerService.SetDocumentURL(userID, result.URL)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if previousURL != "" && previousURL != result.URL {
		if key := h.storageService.KeyFromURL(previousURL); key != "" {
			if err := h.storageService.DeleteFile(key); err != nil {
				logrus.WithError(err).WithField("user_id", userID).Warn("Failed to delete replaced seller document")
			}
		}
	}

	utils.SuccessResponse(c, gin.H{
		"profile": profile,
		"upload":  result,
	})
}

// GET /admin/sellers
func (h *SellerHandler) ListSellers(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	sellers, total, err := h.sellerService.ListSellers(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(sellers, total, params))
}

// GET /admin/sellers/:id/document
func (h *SellerHandler) GetSellerDocument(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid seller profile id", nil)
		return
	}

	profile, err := h.sellerService.GetProfileByID(profileID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if profile.DocumentURL == "" {
		utils.NotFoundResponse(c, "Seller document")
		return
	}

	// Documents live in a private bucket; hand out a short-lived link.
	key := h.storageService.KeyFromURL(profile.DocumentURL)
	signedURL, err := h.storageService.GeneratePresignedURL(key, 15*time.Minute)
	if err != nil {
		// Local development stores plain URLs with no signing backend.
		signedURL = profile.DocumentURL
	}

	utils.SuccessResponse(c, gin.H{
		"url":        signedURL,
		"expires_in": int((15 * time.Minute).Seconds()),
	})
}

// POST /admin/sellers/:id/approve
func (h *SellerHandler) ApproveSeller(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid seller profile id", nil)
		return
	}

	profile, err := h.sellerService.ApproveSeller(profileID, adminID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, profile)
}

// POST /admin/sellers/:id/reject
func (h *SellerHandler) RejectSeller(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid seller profile id", nil)
		return
	}

	var req rejectSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	profile, err := h.sellerService.RejectSeller(profileID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, profile)
}

// PATCH /admin/sellers/:id/tier
func (h *SellerHandler) SetTier(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid seller profile id", nil)
		return
	}

	var req services.SetTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	profile, err := h.sellerService.SetTier(profileID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, profile)
}
