package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/valueobject"
)

type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TaskID    *uuid.UUID
	Title     string
	Message   string
	Type      valueobject.NotificationType
	IsRead    bool
	CreatedAt time.Time
}

func newTaskNotification(userID uuid.UUID, task *Task, typ valueobject.NotificationType, title, message string) *Notification {
	taskID := task.ID
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		TaskID:    &taskID,
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: time.Now().UTC(),
	}
}

func NewTaskAcceptedNotification(task *Task) *Notification {
	return newTaskNotification(task.PosterID, task, valueobject.NotificationTaskAccepted,
		"Task Accepted!", fmt.Sprintf("A buddy has accepted your task: %q", task.Title))
}

func NewPaymentRequestedNotification(task *Task) *Notification {
	return newTaskNotification(task.PosterID, task, valueobject.NotificationPaymentRequested,
		"Payment Requested", fmt.Sprintf("Your buddy has finished %q and requested payment.", task.Title))
}

func NewPaymentReleasedNotification(task *Task) *Notification {
	return newTaskNotification(*task.BuddyID, task, valueobject.NotificationPaymentReleased,
		"Payment Received!", fmt.Sprintf("%s for %q has been added to your wallet.", task.Budget, task.Title))
}

func NewTaskCancelledNotification(task *Task, recipient uuid.UUID) *Notification {
	return newTaskNotification(recipient, task, valueobject.NotificationTaskCancelled,
		"Task Cancelled", fmt.Sprintf("The task %q has been cancelled.", task.Title))
}
