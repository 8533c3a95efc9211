package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
)

type CreateTaskInput struct {
	PosterID    uuid.UUID
	Title       string
	Description string
	Category    string
	Location    string
	Budget      int64
}

type CreateTaskUseCase struct {
	tx repository.Transactor
}

func NewCreateTaskUseCase(tx repository.Transactor) *CreateTaskUseCase {
	return &CreateTaskUseCase{tx: tx}
}

func (uc *CreateTaskUseCase) Execute(ctx context.Context, input CreateTaskInput) (*entity.Task, error) {
	task, err := entity.NewTask(
		input.PosterID,
		input.Title,
		input.Description,
		input.Category,
		input.Location,
		input.Budget,
	)
	if err != nil {
		return nil, err
	}

	err = uc.tx.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.GetUser(ctx, input.PosterID); err != nil {
			return err
		}
		return tx.CreateTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}
