// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tripline/travel-backend/internal/commission"
	"github.com/tripline/travel-backend/internal/utils"
)

// respondServiceError maps the commission package's sentinel errors to API
// error codes; anything unmatched is a plain bad request.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commission.ErrNotFound),
		errors.Is(err, commission.ErrPaymentNotFound):
		utils.NotFoundResponse(c, "resource")
	case errors.Is(err, commission.ErrInvalidTransition):
		utils.UnprocessableResponse(c, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, commission.ErrInvalidState):
		utils.UnprocessableResponse(c, "INVALID_STATE", err.Error())
	case errors.Is(err, commission.ErrInsufficientBalance):
		utils.UnprocessableResponse(c, "INSUFFICIENT_BALANCE", err.Error())
	case errors.Is(err, commission.ErrNoSellerAttached):
		utils.UnprocessableResponse(c, "NO_SELLER", err.Error())
	case errors.Is(err, commission.ErrPartialFailure):
		utils.InternalErrorResponse(c, err.Error())
	case errors.Is(err, commission.ErrInvalidInput):
		utils.BadRequestResponse(c, err.Error(), nil)
	default:
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}
