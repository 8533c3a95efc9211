package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/taskbuddy-backend/internal/http/dto"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/handlers/common"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/response"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/notification"
)

// NotificationHandler обслуживает маршруты уведомлений.
type NotificationHandler struct {
	listUC        *notification.ListNotificationsUseCase
	countUnreadUC *notification.CountUnreadUseCase
	markAsReadUC  *notification.MarkAsReadUseCase
	markAllUC     *notification.MarkAllAsReadUseCase
}

func NewNotificationHandler(
	listUC *notification.ListNotificationsUseCase,
	countUnreadUC *notification.CountUnreadUseCase,
	markAsReadUC *notification.MarkAsReadUseCase,
	markAllUC *notification.MarkAllAsReadUseCase,
) *NotificationHandler {
	return &NotificationHandler{
		listUC:        listUC,
		countUnreadUC: countUnreadUC,
		markAsReadUC:  markAsReadUC,
		markAllUC:     markAllUC,
	}
}

// ListNotifications обрабатывает GET /api/notifications.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)
	unreadOnly := c.Query("unread_only") == "true"

	items, err := h.listUC.Execute(c.Request.Context(), userID, unreadOnly, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToNotificationResponses(items))
}

// CountUnread обрабатывает GET /api/notifications/unread/count.
func (h *NotificationHandler) CountUnread(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	count, err := h.countUnreadUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"count": count})
}

// MarkAsRead обрабатывает PUT /api/notifications/:id/read.
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	id, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.markAsReadUC.Execute(c.Request.Context(), id, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"id": id, "is_read": true})
}

// MarkAllAsRead обрабатывает PUT /api/notifications/read-all.
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.markAllUC.Execute(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}
