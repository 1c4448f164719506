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

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(as *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: as}
}

// GET /admin/overview
func (h *AdminHandler) GetOverview(c *gin.Context) {
	overview, err := h.adminService.GetOverview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build overview"})
		return
	}
	c.JSON(http.StatusOK, overview)
}

// GET /admin/facilities
func (h *AdminHandler) GetAllFacilities(c *gin.Context) {
	facilities, err := h.adminService.GetAllFacilities(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load facilities"})
		return
	}
	c.JSON(http.StatusOK, facilities)
}

// DELETE /admin/facilities/:id
func (h *AdminHandler) DeleteFacility(c *gin.Context) {
	if err := h.adminService.DeleteFacility(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "facility not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete facility"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "facility and its sessions deleted"})
}

// GET /admin/users
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	users, err := h.adminService.GetAllUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// DELETE /admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.adminService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// GET /admin/history
func (h *AdminHandler) GetGlobalHistory(c *gin.Context) {
	filter, err := parseHistoryFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.adminService.GetGlobalHistory(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /admin/history/export
func (h *AdminHandler) ExportGlobalHistory(c *gin.Context) {
	filter, err := parseHistoryFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.adminService.GetGlobalHistory(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export history"})
		return
	}
	names, err := h.adminService.FacilityNames(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export history"})
		return
	}

	rows := make([][]string, 0, len(result.Sessions))
	for _, s := range result.Sessions {
		facilityName := names[s.FacilityID]
		if facilityName == "" {
			facilityName = "Unknown"
		}
		driver := ""
		if s.DriverName.Valid {
			driver = s.DriverName.String
		}
		base := sessionCSVRow(s)
		row := []string{facilityName, base[0], driver}
		row = append(row, base[1:]...)
		rows = append(rows, row)
	}
	writeHistoryCSV(c, "all-parking-history.csv",
		[]string{"Facility", "Vehicle", "Driver", "Type", "Duration", "Fee", "Entry Time", "Exit Time"}, rows)
}

// GET /admin/admins
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	admins, err := h.adminService.ListAdmins(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load admins"})
		return
	}
	c.JSON(http.StatusOK, admins)
}

// POST /admin/admins
func (h *AdminHandler) AddAdmin(c *gin.Context) {
	var dto domain.AddAdminDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.adminService.AddAdmin(c.Request.Context(), middleware.UserID(c), dto)
	if err != nil {
		if errors.Is(err, service.ErrAdminExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add admin", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, membership)
}

// DELETE /admin/admins/:uid
func (h *AdminHandler) RemoveAdmin(c *gin.Context) {
	if c.Param("uid") == middleware.UserID(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot remove your own admin access"})
		return
	}
	if err := h.adminService.RemoveAdmin(c.Request.Context(), c.Param("uid")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "admin not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove admin"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "admin removed"})
}
