package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/devjasani79/WhatsUpDev/pkg/errors"
	"github.com/devjasani79/WhatsUpDev/pkg/logger"
)

// ErrorHandlerMiddleware maps AppErrors attached to the context onto their
// HTTP shape and recovers panics. Internals never leak to the client.
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(debug.Stack())).
					Msg("Panic recovered")

				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal Server Error",
				})
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err

			if appErr, ok := err.(*errors.AppError); ok {
				body := gin.H{"message": appErr.Message}
				if appErr.ErrorCode != "" {
					body["errorCode"] = appErr.ErrorCode
				}
				if appErr.Field != "" {
					body["field"] = appErr.Field
				}
				c.JSON(appErr.Status, body)
				return
			}

			logger.Error().Err(err).Msg("Unhandled request error")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal Server Error",
			})
		}
	}
}
