package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/reservations")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.GET("/:id", h.Get)
		group.PATCH("/:id", h.Update)
		group.DELETE("/:id", h.Delete)
		group.PATCH("/:id/status", h.UpdateStatus)
		group.PATCH("/:id/cancel", h.Cancel)
	}

	availability := g.Group("/availability")
	availability.Use(authMiddleware)
	{
		availability.GET("/check", h.CheckAvailability)
		availability.GET("/summary", h.AvailabilitySummary)
	}

	// Registered next to the classroom routes; same :id parameter.
	g.GET("/classrooms/:id/schedule", authMiddleware, h.ClassroomSchedule)
}
