package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/taskbuddy-backend/internal/http/dto"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/handlers/common"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/response"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/leaderboard"
)

type LeaderboardHandler struct {
	leaderboard *leaderboard.UseCase
}

func NewLeaderboardHandler(uc *leaderboard.UseCase) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: uc}
}

// GetLeaderboard обрабатывает GET /api/leaderboard?limit=.
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.leaderboard.Execute(c.Request.Context(), common.ParseIntQuery(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToLeaderboardResponse(entries))
}
