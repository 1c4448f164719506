package handler

import (
	"errors"
	"net/http"

	"github.com/MNehlan/ParkX/internal/api/middleware"
	"github.com/MNehlan/ParkX/internal/domain"
	"github.com/MNehlan/ParkX/internal/repository"
	"github.com/MNehlan/ParkX/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(ss *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: ss}
}

// POST /vehicles
func (h *SessionHandler) VehicleEntry(c *gin.Context) {
	var dto domain.VehicleEntryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.VehicleEntry(c.Request.Context(), middleware.UserID(c), dto)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no facility registered for this account"})
		case errors.Is(err, service.ErrVehicleAlreadyParked):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrSlotOutOfRange), errors.Is(err, service.ErrSlotTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record vehicle entry", "details": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, session)
}

// POST /vehicles/:id/exit
func (h *SessionHandler) VehicleExit(c *gin.Context) {
	session, err := h.sessionService.VehicleExit(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "parking session not found"})
		case errors.Is(err, service.ErrSessionAlreadyClosed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record vehicle exit", "details": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, session)
}

// GET /vehicles/active
func (h *SessionHandler) GetActiveSessions(c *gin.Context) {
	sessions, err := h.sessionService.GetActiveSessions(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no facility registered for this account"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load active sessions"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GET /vehicles/history
func (h *SessionHandler) GetHistory(c *gin.Context) {
	filter, err := parseHistoryFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.sessionService.GetHistory(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no facility registered for this account"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /vehicles/history/export
func (h *SessionHandler) ExportHistory(c *gin.Context) {
	filter, err := parseHistoryFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.sessionService.GetHistory(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no facility registered for this account"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export history"})
		return
	}

	rows := make([][]string, 0, len(result.Sessions))
	for _, s := range result.Sessions {
		rows = append(rows, sessionCSVRow(s))
	}
	writeHistoryCSV(c, "parking-history.csv",
		[]string{"Vehicle", "Type", "Duration", "Fee", "Entry Time", "Exit Time"}, rows)
}
