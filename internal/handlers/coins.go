// internal/handlers/coins.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tripline/travel-backend/internal/models"
	"github.com/tripline/travel-backend/internal/services"
	"github.com/tripline/travel-backend/internal/utils"
)

type CoinHandler struct {
	coinService *services.CoinService
}

type reviewRedemptionRequest struct {
	Status          models.RedemptionStatus `json:"status" validate:"required,oneof=approved rejected"`
	RejectionReason string                  `json:"rejection_reason,omitempty"`
}

func NewCoinHandler(coinService *services.CoinService) *CoinHandler {
	return &CoinHandler{
		coinService: coinService,
	}
}

// GET /seller/coins
func (h *CoinHandler) GetMyAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	account, err := h.coinService.GetAccount(userID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, account)
}

// GET /seller/coins/transactions
func (h *CoinHandler) ListMyTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	txns, total, err := h.coinService.GetTransactions(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(txns, total, params))
}

// POST /seller/coins/redemptions
func (h *CoinHandler) RequestRedemption(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.RedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	redemption, err := h.coinService.RequestRedemption(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, redemption)
}

// GET /seller/coins/redemptions
func (h *CoinHandler) ListMyRedemptions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	redemptions, total, err := h.coinService.GetRedemptions(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(redemptions, total, params))
}

// GET /admin/coin-redemptions
func (h *CoinHandler) ListPendingRedemptions(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	redemptions, total, err := h.coinService.ListPendingRedemptions(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(redemptions, total, params))
}

// PATCH /admin/coin-redemptions/:id
func (h *CoinHandler) ReviewRedemption(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	redemptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid redemption id", nil)
		return
	}

	var req reviewRedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	var redemption *models.CoinRedemption
	switch req.Status {
	case models.RedemptionStatusApproved:
		redemption, err = h.coinService.ApproveRedemption(redemptionID, adminID)
	case models.RedemptionStatusRejected:
		if req.RejectionReason == "" {
			utils.BadRequestResponse(c, "rejection_reason is required", nil)
			return
		}
		redemption, err = h.coinService.RejectRedemption(redemptionID, req.RejectionReason)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, redemption)
}
