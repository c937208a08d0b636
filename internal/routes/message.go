package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/devjasani79/WhatsUpDev/internal/handlers"
	"github.com/devjasani79/WhatsUpDev/internal/middleware"
)

func RegisterMessageRoutes(r gin.IRouter) {
	messages := r.Group("/messages")
	messages.Use(middleware.AuthMiddleware())
	{
		messages.POST("/upload", handlers.UploadAttachment)
		messages.DELETE("/:messageId", handlers.DeleteMessage)
	}
}
