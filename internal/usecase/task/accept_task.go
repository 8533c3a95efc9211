package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/event"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

type AcceptTaskUseCase struct {
	tx  repository.Transactor
	pub event.Publisher
}

func NewAcceptTaskUseCase(tx repository.Transactor, pub event.Publisher) *AcceptTaskUseCase {
	return &AcceptTaskUseCase{tx: tx, pub: pub}
}

// Execute назначает buddyID исполнителем открытой задачи и уведомляет автора.
// Из нескольких одновременных попыток успешна ровно одна, остальные
// после повтора видят задачу уже назначенной.
func (uc *AcceptTaskUseCase) Execute(ctx context.Context, taskID, buddyID uuid.UUID) (*entity.Task, error) {
	if buddyID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}

	var (
		accepted *entity.Task
		note     *entity.Notification
	)

	err := uc.tx.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		task, err := tx.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if err := task.Accept(buddyID); err != nil {
			return err
		}
		if err := tx.UpdateTask(ctx, task); err != nil {
			return err
		}

		n := entity.NewTaskAcceptedNotification(task)
		if err := tx.CreateNotification(ctx, n); err != nil {
			return err
		}

		accepted, note = task, n
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishTaskChange(uc.pub, accepted, participantsOf(accepted), note)
	return accepted, nil
}
