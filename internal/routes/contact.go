package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/devjasani79/WhatsUpDev/internal/handlers"
	"github.com/devjasani79/WhatsUpDev/internal/middleware"
)

func RegisterContactRoutes(r gin.IRouter) {
	contacts := r.Group("/contacts")
	contacts.Use(middleware.AuthMiddleware())
	{
		contacts.GET("", handlers.ListContacts)
		contacts.POST("", handlers.AddContact)
		contacts.POST("/import", handlers.ImportContacts)
	}
}
