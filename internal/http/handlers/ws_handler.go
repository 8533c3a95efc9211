package handlers

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/taskbuddy-backend/internal/http/middleware"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/response"
	"github.com/ignatzorin/taskbuddy-backend/internal/logger"
	"github.com/ignatzorin/taskbuddy-backend/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений.
type WSHandler struct {
	hub      *ws.Hub
	tokens   middleware.TokenParser
	upgrader websocket.Upgrader
}

// NewWSHandler создаёт хэндлер. Пустой allowedOrigins разрешает любой origin.
func NewWSHandler(hub *ws.Hub, tokens middleware.TokenParser, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Handle обслуживает GET /api/ws?token=...
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		response.Unauthorized(c, "access token is required")
		return
	}

	userID, err := h.tokens.ParseAccess(rawToken)
	if err != nil {
		response.Unauthorized(c, "invalid access token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ клиенту.
		logger.Log.WithError(err).WithField("user_id", userID).Debug("ws: не удалось установить соединение")
		return
	}

	client := ws.NewClient(conn, h.hub, userID)
	h.hub.Register(client)

	client.Run(c.Request.Context())
}
