package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/http/response"
)

// ContextUserIDKey хранит идентификатор пользователя в gin.Context.
const ContextUserIDKey = "userID"

// TokenParser проверяет access токен и возвращает идентификатор пользователя.
type TokenParser interface {
	ParseAccess(token string) (uuid.UUID, error)
}

// AuthMiddleware проверяет JWT access токен из заголовка Authorization.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			response.Unauthorized(c, "authorization required")
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		userID, err := tokens.ParseAccess(raw)
		if err != nil || userID == uuid.Nil {
			response.Unauthorized(c, "invalid access token")
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}
