package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/valueobject"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type GetTaskUseCase struct {
	tasks repository.TaskRepository
}

func NewGetTaskUseCase(tasks repository.TaskRepository) *GetTaskUseCase {
	return &GetTaskUseCase{tasks: tasks}
}

func (uc *GetTaskUseCase) Execute(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	return uc.tasks.FindByID(ctx, id)
}

type ListTasksInput struct {
	Status   string
	Category string
	PosterID *uuid.UUID
	BuddyID  *uuid.UUID
	Limit    int
	Offset   int
}

type ListTasksUseCase struct {
	tasks repository.TaskRepository
}

func NewListTasksUseCase(tasks repository.TaskRepository) *ListTasksUseCase {
	return &ListTasksUseCase{tasks: tasks}
}

func (uc *ListTasksUseCase) Execute(ctx context.Context, input ListTasksInput) ([]*entity.Task, int, error) {
	filter := repository.TaskFilter{
		Category: input.Category,
		PosterID: input.PosterID,
		BuddyID:  input.BuddyID,
		Limit:    NormalizeLimit(input.Limit),
		Offset:   input.Offset,
	}

	if input.Status != "" {
		status, err := valueobject.NewTaskStatus(input.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = status
	}
	if input.Category != "" && !valueobject.IsValidCategory(input.Category) {
		return nil, 0, apperror.New(apperror.ErrCodeValidation, "unknown category")
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return uc.tasks.List(ctx, filter)
}

// NormalizeLimit подставляет размер страницы по умолчанию и ограничивает максимум.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
