package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger проверяет доступность хранилища.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler предоставляет endpoint для проверки здоровья сервиса.
type HealthHandler struct {
	db     Pinger
	driver string
}

// NewHealthHandler создаёт health handler. db может быть nil для хранилища в памяти.
func NewHealthHandler(db Pinger, driver string) *HealthHandler {
	return &HealthHandler{db: db, driver: driver}
}

// HealthResponse представляет ответ health check.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := map[string]string{"driver": h.driver}
	status := "healthy"

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			checks["database"] = "unhealthy"
			status = "unhealthy"
		} else {
			checks["database"] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}
