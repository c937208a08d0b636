package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/devjasani79/WhatsUpDev/internal/handlers"
)

func RegisterAuthRoutes(r gin.IRouter) {
	r.POST("/signup", handlers.Signup)
	r.POST("/signin", handlers.Signin)
}
