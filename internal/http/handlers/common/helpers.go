package common

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/http/middleware"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/response"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

// CurrentUserID извлекает идентификатор пользователя, записанный AuthMiddleware.
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, ok := raw.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// RequireUserID пишет 401 и возвращает false, если пользователь не определён.
func RequireUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := CurrentUserID(c)
	if err != nil {
		response.Error(c, err)
		return uuid.Nil, false
	}
	return userID, true
}

// ParseUUIDParam читает UUID из параметра пути и пишет 400 при ошибке.
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, bool) {
	parsed, err := uuid.Parse(c.Param(paramName))
	if err != nil {
		response.BadRequest(c, "parameter "+paramName+" must be a valid UUID")
		return uuid.Nil, false
	}
	return parsed, true
}

// ParseIntQuery читает целый query-параметр с значением по умолчанию.
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetPagination возвращает limit и offset как есть; ограничения применяют use case'ы.
func GetPagination(c *gin.Context) (limit, offset int) {
	limit = ParseIntQuery(c, "limit", 0)
	offset = ParseIntQuery(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
