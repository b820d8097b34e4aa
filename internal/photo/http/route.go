package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, staffMiddleware gin.HandlerFunc) {
	classrooms := g.Group("/classrooms/:id/photos")
	classrooms.Use(authMiddleware)
	{
		classrooms.GET("", h.ListByClassroom)
		classrooms.POST("", staffMiddleware, h.Upload)
	}

	photos := g.Group("/photos")
	photos.Use(authMiddleware)
	{
		photos.GET("/:id", h.Serve)
		photos.GET("/:id/thumbnail", h.ServeThumbnail)
		photos.DELETE("/:id", staffMiddleware, h.Delete)
	}
}
