package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
)

// TaskChanged рассылается автору и исполнителю после каждого перехода статуса.
type TaskChanged struct {
	TaskID    uuid.UUID  `json:"task_id"`
	Status    string     `json:"status"`
	PosterID  uuid.UUID  `json:"poster_id"`
	BuddyID   *uuid.UUID `json:"buddy_id,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewTaskChanged(task *entity.Task) TaskChanged {
	return TaskChanged{
		TaskID:    task.ID,
		Status:    string(task.Status),
		PosterID:  task.PosterID,
		BuddyID:   task.BuddyID,
		UpdatedAt: task.UpdatedAt,
	}
}

type NotificationCreated struct {
	ID      uuid.UUID  `json:"id"`
	TaskID  *uuid.UUID `json:"task_id,omitempty"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
	Type    string     `json:"type"`
}

func NewNotificationCreated(n *entity.Notification) NotificationCreated {
	return NotificationCreated{
		ID:      n.ID,
		TaskID:  n.TaskID,
		Title:   n.Title,
		Message: n.Message,
		Type:    string(n.Type),
	}
}

type ChatMessagePosted struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func NewChatMessagePosted(m *entity.Message) ChatMessagePosted {
	return ChatMessagePosted{
		ID:        m.ID,
		TaskID:    m.TaskID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

type WalletChanged struct {
	Balance int64  `json:"wallet_balance"`
	XP      int64  `json:"xp"`
	Level   string `json:"level"`
}

func NewWalletChanged(u *entity.User) WalletChanged {
	return WalletChanged{
		Balance: u.WalletBalance.Int64(),
		XP:      u.XP,
		Level:   string(u.Level()),
	}
}
