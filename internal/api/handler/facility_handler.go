package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/MNehlan/ParkX/internal/api/middleware"
	"github.com/MNehlan/ParkX/internal/domain"
	"github.com/MNehlan/ParkX/internal/repository"
	"github.com/MNehlan/ParkX/internal/service"

	"github.com/gin-gonic/gin"
)

type FacilityHandler struct {
	facilityService *service.FacilityService
}

func NewFacilityHandler(fs *service.FacilityService) *FacilityHandler {
	return &FacilityHandler{facilityService: fs}
}

// GET /facility
func (h *FacilityHandler) GetOwnFacility(c *gin.Context) {
	facility, err := h.facilityService.GetOwnFacility(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no facility registered for this account"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load facility"})
		return
	}
	c.JSON(http.StatusOK, facility)
}

// POST /facility
func (h *FacilityHandler) CreateFacility(c *gin.Context) {
	var dto domain.FacilityDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	facility, err := h.facilityService.CreateFacility(c.Request.Context(), middleware.UserID(c), dto)
	if err != nil {
		if errors.Is(err, service.ErrFacilityExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create facility", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, facility)
}

// PUT /facility
func (h *FacilityHandler) UpdateFacility(c *gin.Context) {
	var dto domain.FacilityDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	facility, err := h.facilityService.UpdateFacility(c.Request.Context(), middleware.UserID(c), dto)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no facility registered for this account"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update facility", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, facility)
}

// GET /facility/occupancy
func (h *FacilityHandler) GetOccupancy(c *gin.Context) {
	occupancy, err := h.facilityService.GetOccupancy(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no facility registered for this account"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute occupancy"})
		return
	}
	c.JSON(http.StatusOK, occupancy)
}

// GET /facility/analytics
func (h *FacilityHandler) GetAnalytics(c *gin.Context) {
	analytics, err := h.facilityService.GetAnalytics(c.Request.Context(), middleware.UserID(c), time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no facility registered for this account"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute analytics"})
		return
	}
	c.JSON(http.StatusOK, analytics)
}
