package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/event"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
)

type CancelTaskUseCase struct {
	tx  repository.Transactor
	pub event.Publisher
}

func NewCancelTaskUseCase(tx repository.Transactor, pub event.Publisher) *CancelTaskUseCase {
	return &CancelTaskUseCase{tx: tx, pub: pub}
}

func (uc *CancelTaskUseCase) Execute(ctx context.Context, taskID, actorID uuid.UUID) (*entity.Task, error) {
	var (
		cancelled    *entity.Task
		note         *entity.Notification
		participants []uuid.UUID
	)

	err := uc.tx.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		task, err := tx.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		// Исполнитель сбрасывается при отмене, поэтому список адресатов
		// берётся до перехода.
		recipients := participantsOf(task)

		counterpart, err := task.Cancel(actorID)
		if err != nil {
			return err
		}
		if err := tx.UpdateTask(ctx, task); err != nil {
			return err
		}

		var n *entity.Notification
		if counterpart != nil {
			n = entity.NewTaskCancelledNotification(task, *counterpart)
			if err := tx.CreateNotification(ctx, n); err != nil {
				return err
			}
		}

		cancelled, note, participants = task, n, recipients
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishTaskChange(uc.pub, cancelled, participants, note)
	return cancelled, nil
}
