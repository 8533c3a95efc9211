package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *entity.Message) error
	ListByTask(ctx context.Context, taskID uuid.UUID, limit, offset int) ([]*entity.Message, error)
}
