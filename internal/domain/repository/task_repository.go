package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/valueobject"
)

// TaskRepository читает задачи вне транзакций (ленты и карточки задач).
type TaskRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*entity.Task, int, error)
}

type TaskFilter struct {
	Status   valueobject.TaskStatus
	Category string
	PosterID *uuid.UUID
	BuddyID  *uuid.UUID
	Limit    int
	Offset   int
}
