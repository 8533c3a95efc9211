package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/taskbuddy-backend/internal/http/dto"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/handlers/common"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/response"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/chat"
)

// ChatHandler обслуживает переписку участников задачи.
type ChatHandler struct {
	sendMessageUC  *chat.SendMessageUseCase
	listMessagesUC *chat.ListMessagesUseCase
}

func NewChatHandler(sendMessageUC *chat.SendMessageUseCase, listMessagesUC *chat.ListMessagesUseCase) *ChatHandler {
	return &ChatHandler{sendMessageUC: sendMessageUC, listMessagesUC: listMessagesUC}
}

// ListMessages обрабатывает GET /api/tasks/:id/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	taskID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)
	messages, err := h.listMessagesUC.Execute(c.Request.Context(), taskID, userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToMessageResponses(messages))
}

// SendMessage обрабатывает POST /api/tasks/:id/messages.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	taskID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "content is required")
		return
	}

	msg, err := h.sendMessageUC.Execute(c.Request.Context(), taskID, userID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToMessageResponse(msg))
}
