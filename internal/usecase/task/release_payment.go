package task

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/event"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
	"github.com/ignatzorin/taskbuddy-backend/internal/logger"
)

type ReleasePaymentUseCase struct {
	tx          repository.Transactor
	pub         event.Publisher
	leaderboard LeaderboardInvalidator
}

func NewReleasePaymentUseCase(tx repository.Transactor, pub event.Publisher, leaderboard LeaderboardInvalidator) *ReleasePaymentUseCase {
	return &ReleasePaymentUseCase{tx: tx, pub: pub, leaderboard: leaderboard}
}

// Execute выплачивает бюджет исполнителю. Статус задачи, баланс и XP
// исполнителя, две записи журнала и уведомление фиксируются вместе
// или не фиксируются вовсе.
func (uc *ReleasePaymentUseCase) Execute(ctx context.Context, taskID, actorID uuid.UUID) (*entity.Task, error) {
	var (
		paid  *entity.Task
		buddy *entity.User
		note  *entity.Notification
	)

	err := uc.tx.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		task, err := tx.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if err := task.MarkPaid(actorID); err != nil {
			return err
		}

		// Автор только проверяется на существование: его баланс не меняется.
		if _, err := tx.GetUser(ctx, task.PosterID); err != nil {
			return err
		}
		b, err := tx.GetUser(ctx, *task.BuddyID)
		if err != nil {
			return err
		}

		b.Credit(task.Budget)
		b.AwardXP(entity.PaymentXPReward)

		if err := tx.UpdateTask(ctx, task); err != nil {
			return err
		}
		if err := tx.UpdateUser(ctx, b); err != nil {
			return err
		}

		credit, debit := entity.NewReleaseEntries(task)
		if err := tx.AppendLedger(ctx, credit); err != nil {
			return err
		}
		if err := tx.AppendLedger(ctx, debit); err != nil {
			return err
		}

		n := entity.NewPaymentReleasedNotification(task)
		if err := tx.CreateNotification(ctx, n); err != nil {
			return err
		}

		paid, buddy, note = task, b, n
		return nil
	})
	if err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"task_id":  taskID,
			"actor_id": actorID,
		}).Warn("не удалось выплатить оплату по задаче")
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"task_id":  paid.ID,
		"buddy_id": buddy.ID,
		"amount":   paid.Budget.Int64(),
		"balance":  buddy.WalletBalance.Int64(),
		"xp":       buddy.XP,
	}).Info("оплата по задаче выплачена")

	if uc.leaderboard != nil {
		uc.leaderboard.Invalidate()
	}
	publishTaskChange(uc.pub, paid, participantsOf(paid), note)
	if uc.pub != nil {
		uc.pub.Publish(buddy.ID, event.WalletUpdated, event.NewWalletChanged(buddy))
	}
	return paid, nil
}
