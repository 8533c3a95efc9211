package task

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/event"
)

// LeaderboardInvalidator сбрасывает закэшированный рейтинг после начисления XP.
type LeaderboardInvalidator interface {
	Invalidate()
}

// publishTaskChange рассылает новое состояние задачи участникам и
// доставляет созданные в транзакции уведомления их адресатам.
func publishTaskChange(pub event.Publisher, task *entity.Task, participants []uuid.UUID, notes ...*entity.Notification) {
	if pub == nil {
		return
	}
	payload := event.NewTaskChanged(task)
	for _, id := range participants {
		pub.Publish(id, event.TaskUpdated, payload)
	}
	for _, n := range notes {
		if n != nil {
			pub.Publish(n.UserID, event.Notification, event.NewNotificationCreated(n))
		}
	}
}

func participantsOf(task *entity.Task) []uuid.UUID {
	ids := []uuid.UUID{task.PosterID}
	if task.BuddyID != nil {
		ids = append(ids, *task.BuddyID)
	}
	return ids
}
