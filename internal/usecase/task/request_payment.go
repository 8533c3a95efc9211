package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/event"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
)

type RequestPaymentUseCase struct {
	tx  repository.Transactor
	pub event.Publisher
}

func NewRequestPaymentUseCase(tx repository.Transactor, pub event.Publisher) *RequestPaymentUseCase {
	return &RequestPaymentUseCase{tx: tx, pub: pub}
}

// Execute отмечает работу выполненной по запросу назначенного исполнителя.
func (uc *RequestPaymentUseCase) Execute(ctx context.Context, taskID, actorID uuid.UUID) (*entity.Task, error) {
	var (
		completed *entity.Task
		note      *entity.Notification
	)

	err := uc.tx.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		task, err := tx.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if err := task.RequestPayment(actorID); err != nil {
			return err
		}
		if err := tx.UpdateTask(ctx, task); err != nil {
			return err
		}

		n := entity.NewPaymentRequestedNotification(task)
		if err := tx.CreateNotification(ctx, n); err != nil {
			return err
		}

		completed, note = task, n
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishTaskChange(uc.pub, completed, participantsOf(completed), note)
	return completed, nil
}
