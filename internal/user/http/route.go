package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, staffMiddleware, adminMiddleware gin.HandlerFunc) {
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/me", authMiddleware, h.Me)
	}

	users := g.Group("/users")
	users.Use(authMiddleware)
	{
		users.GET("", staffMiddleware, h.List)
		users.GET("/:id", h.Get)
		users.POST("", adminMiddleware, h.Create)
		users.PATCH("/:id/active", adminMiddleware, h.SetActive)
		users.DELETE("/:id", adminMiddleware, h.Delete)
	}
}
