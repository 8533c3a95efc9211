package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/taskbuddy-backend/internal/logger"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

// Response задаёт единый конверт ответа API.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

type PaginatedResponse struct {
	Success    bool       `json:"success"`
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func Paginated(c *gin.Context, data any, total, limit, offset int) {
	c.JSON(http.StatusOK, PaginatedResponse{
		Success: true,
		Data:    data,
		Pagination: Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+limit < total,
		},
	})
}

// Error преобразует ошибку в ответ. Сообщения внутренних ошибок клиенту не отдаются.
func Error(c *gin.Context, err error) {
	status, body := Describe(err)
	if status >= http.StatusInternalServerError {
		logger.Log.WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).WithError(err).Error("http: внутренняя ошибка")
	}
	c.AbortWithStatusJSON(status, body)
}

// Describe возвращает статус и тело ответа для ошибки.
func Describe(err error) (int, Response) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError {
		return appErr.HTTPStatus, Response{
			Success: false,
			Error:   appErr.Message,
			Code:    string(appErr.Code),
		}
	}
	return http.StatusInternalServerError, Response{
		Success: false,
		Error:   "internal server error",
		Code:    string(apperror.ErrCodeInternal),
	}
}

func fail(c *gin.Context, status int, code apperror.ErrorCode, message string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Error: message, Code: string(code)})
}

func BadRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, apperror.ErrCodeBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	fail(c, http.StatusNotFound, apperror.ErrCodeNotFound, message)
}

func Unauthorized(c *gin.Context, message string) {
	fail(c, http.StatusUnauthorized, apperror.ErrCodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	fail(c, http.StatusForbidden, apperror.ErrCodeForbidden, message)
}

func TooManyRequests(c *gin.Context, message string) {
	fail(c, http.StatusTooManyRequests, "RATE_LIMITED", message)
}
