package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/devjasani79/WhatsUpDev/internal/handlers"
	"github.com/devjasani79/WhatsUpDev/internal/middleware"
)

func RegisterChatRoutes(r gin.IRouter) {
	chats := r.Group("/chats")
	chats.Use(middleware.AuthMiddleware())
	{
		chats.GET("", handlers.ListChats)
		chats.POST("", handlers.CreateChat)
		chats.POST("/group", handlers.CreateGroupChat)
		chats.GET("/:chatId/messages", handlers.ListMessages)
		chats.POST("/:chatId/messages", handlers.SendMessage)
	}
}
