// internal/handlers/trip.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tripline/travel-backend/internal/services"
	"github.com/tripline/travel-backend/internal/utils"
)

type TripHandler struct {
	tripService    *services.TripService
	storageService *services.StorageService
}

func NewTripHandler(tripService *services.TripService, storageService *services.StorageService) *TripHandler {
	return &TripHandler{
		tripService:    tripService,
		storageService: storageService,
	}
}

// GET /trips
func (h *TripHandler) ListTrips(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	trips, total, err := h.tripService.ListTrips(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(trips, total, params))
}

// GET /trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid trip id", nil)
		return
	}

	trip, err := h.tripService.GetTrip(tripID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, trip)
}

// POST /admin/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req services.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	trip, err := h.tripService.CreateTrip(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, trip)
}

// PATCH /admin/trips/:id
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid trip id", nil)
		return
	}

	var req services.UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	trip, err := h.tripService.UpdateTrip(tripID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, trip)
}

// DELETE /admin/trips/:id
func (h *TripHandler) DeactivateTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid trip id", nil)
		return
	}

	if err := h.tripService.DeactivateTrip(tripID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Trip deactivated"})
}

// POST /admin/trips/:id/cover
func (h *TripHandler) UploadCover(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid trip id", nil)
		return
	}

	existing, err := h.tripService.GetTrip(tripID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "file is required", nil)
		return
	}
	defer file.Close()

	if err := h.storageService.ValidateImage(file); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	result, err := h.storageService.UploadFile(file, header, h.storageService.GetDefaultUploadOptions("trip_covers"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	trip, err := h.tripService.UpdateTrip(tripID, &services.UpdateTripRequest{CoverImageURL: &result.URL})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Replaced covers are orphans; removal is best effort.
	if existing.CoverImageURL != "" && existing.CoverImageURL != result.URL {
		if key := h.storageService.KeyFromURL(existing.CoverImageURL); key != "" {
			if err := h.storageService.DeleteFile(key); err != nil {
				logrus.WithError(err).WithField("trip_id", tripID).Warn("Failed to delete replaced cover image")
			}
		}
	}

	utils.SuccessResponse(c, gin.H{
		"trip":   trip,
		"upload": result,
	})
}

// POST /admin/trips/:id/schedules
func (h *TripHandler) CreateSchedule(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid trip id", nil)
		return
	}

	var req services.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	schedule, err := h.tripService.CreateSchedule(tripID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, schedule)
}

// GET /trips/:id/schedules/:scheduleId
func (h *TripHandler) GetSchedule(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid trip id", nil)
		return
	}

	scheduleID, err := uuid.Parse(c.Param("scheduleId"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid schedule id", nil)
		return
	}

	schedule, err := h.tripService.GetSchedule(scheduleID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if schedule.TripID != tripID {
		utils.NotFoundResponse(c, "Schedule")
		return
	}

	utils.SuccessResponse(c, schedule)
}

// GET /trips/:id/schedules
func (h *TripHandler) ListSchedules(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid trip id", nil)
		return
	}

	schedules, err := h.tripService.ListUpcomingSchedules(tripID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, schedules)
}
