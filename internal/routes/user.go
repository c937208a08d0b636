package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/devjasani79/WhatsUpDev/internal/handlers"
	"github.com/devjasani79/WhatsUpDev/internal/middleware"
)

func RegisterUserRoutes(r gin.IRouter) {
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/me", handlers.GetMe)
		users.PATCH("/me", handlers.UpdateMe)
		users.GET("/search", handlers.SearchUsers)
	}
}
