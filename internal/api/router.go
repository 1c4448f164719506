package api

import (
	"github.com/MNehlan/ParkX/internal/api/handler"
	"github.com/MNehlan/ParkX/internal/api/middleware"
	"github.com/MNehlan/ParkX/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(as *service.AuthService, fs *service.FacilityService, ss *service.SessionService,
	adminSvc *service.AdminService, authMw *middleware.AuthMiddleware, wsManager *handler.WebSocketManager) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// WebSocket endpoint, no auth required for the live-update stream.
	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(as)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		facilityH := handler.NewFacilityHandler(fs)
		facilityRoutes := v1.Group("/facility")
		{
			facilityRoutes.POST("", facilityH.CreateFacility)
			facilityRoutes.GET("", facilityH.GetOwnFacility)
			facilityRoutes.PUT("", facilityH.UpdateFacility)
			facilityRoutes.GET("/occupancy", facilityH.GetOccupancy)
			facilityRoutes.GET("/analytics", facilityH.GetAnalytics)
		}

		sessionH := handler.NewSessionHandler(ss)
		vehicleRoutes := v1.Group("/vehicles")
		{
			vehicleRoutes.POST("", sessionH.VehicleEntry)
			vehicleRoutes.GET("/active", sessionH.GetActiveSessions)
			vehicleRoutes.POST("/:id/exit", sessionH.VehicleExit)
			vehicleRoutes.GET("/history", sessionH.GetHistory)
			vehicleRoutes.GET("/history/export", sessionH.ExportHistory)
		}

		adminH := handler.NewAdminHandler(adminSvc)
		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(authMw.AdminOnly())
		{
			adminRoutes.GET("/overview", adminH.GetOverview)
			adminRoutes.GET("/facilities", adminH.GetAllFacilities)
			adminRoutes.DELETE("/facilities/:id", adminH.DeleteFacility)
			adminRoutes.GET("/users", adminH.GetAllUsers)
			adminRoutes.DELETE("/users/:id", adminH.DeleteUser)
			adminRoutes.GET("/history", adminH.GetGlobalHistory)
			adminRoutes.GET("/history/export", adminH.ExportGlobalHistory)
			adminRoutes.GET("/admins", adminH.ListAdmins)
			adminRoutes.POST("/admins", adminH.AddAdmin)
			adminRoutes.DELETE("/admins/:uid", adminH.RemoveAdmin)
		}
	}

	return r
}
