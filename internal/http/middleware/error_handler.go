package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/taskbuddy-backend/internal/http/response"
)

// ErrorHandler обрабатывает ошибки, добавленные через c.Error, если
// хэндлер сам не записал ответ. Внутренние ошибки маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		response.Error(c, c.Errors.Last().Err)
	}
}
