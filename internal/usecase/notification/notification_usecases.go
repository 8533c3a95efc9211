package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
)

type ListNotificationsUseCase struct {
	repo repository.NotificationRepository
}

func NewListNotificationsUseCase(repo repository.NotificationRepository) *ListNotificationsUseCase {
	return &ListNotificationsUseCase{repo: repo}
}

func (uc *ListNotificationsUseCase) Execute(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repo.List(ctx, userID, unreadOnly, limit, offset)
}

type CountUnreadUseCase struct {
	repo repository.NotificationRepository
}

func NewCountUnreadUseCase(repo repository.NotificationRepository) *CountUnreadUseCase {
	return &CountUnreadUseCase{repo: repo}
}

func (uc *CountUnreadUseCase) Execute(ctx context.Context, userID uuid.UUID) (int, error) {
	return uc.repo.CountUnread(ctx, userID)
}

type MarkAsReadUseCase struct {
	repo repository.NotificationRepository
}

func NewMarkAsReadUseCase(repo repository.NotificationRepository) *MarkAsReadUseCase {
	return &MarkAsReadUseCase{repo: repo}
}

// Execute отмечает уведомление прочитанным. Чужое уведомление выглядит
// для пользователя несуществующим.
func (uc *MarkAsReadUseCase) Execute(ctx context.Context, id, userID uuid.UUID) error {
	return uc.repo.MarkAsRead(ctx, id, userID)
}

type MarkAllAsReadUseCase struct {
	repo repository.NotificationRepository
}

func NewMarkAllAsReadUseCase(repo repository.NotificationRepository) *MarkAllAsReadUseCase {
	return &MarkAllAsReadUseCase{repo: repo}
}

func (uc *MarkAllAsReadUseCase) Execute(ctx context.Context, userID uuid.UUID) error {
	return uc.repo.MarkAllAsRead(ctx, userID)
}
