package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ignatzorin/taskbuddy-backend/internal/http/response"
	"github.com/ignatzorin/taskbuddy-backend/internal/logger"
)

// RateLimitMiddleware ограничивает количество запросов с одного IP.
// По умолчанию: 10 запросов в минуту.
func RateLimitMiddleware(limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = time.Minute
	}

	instance := limiter.New(memory.NewStore(), limiter.Rate{
		Period: period,
		Limit:  limit,
	})

	return func(c *gin.Context) {
		state, err := instance.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Сбой лимитера не должен блокировать запросы.
			logger.Log.WithError(err).Warn("rate limit: не удалось получить состояние")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(state.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(state.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(state.Reset, 10))

		if state.Reached {
			response.TooManyRequests(c, "too many requests, try again later")
			return
		}

		c.Next()
	}
}
