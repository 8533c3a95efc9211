package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
)

type NotificationRepository interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	// MarkAsRead отмечает уведомление владельца; чужое уведомление не найдётся.
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
}
