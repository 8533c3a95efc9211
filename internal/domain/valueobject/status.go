package valueobject

import (
	"slices"

	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

// TaskStatus хранит значения, совместимые с уже существующими документами задач:
// "Open" пишется с заглавной буквы, остальные статусы строчными.
type TaskStatus string

const (
	TaskStatusOpen      TaskStatus = "Open"
	TaskStatusAssigned  TaskStatus = "assigned"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusPaid      TaskStatus = "paid"
	TaskStatusCancelled TaskStatus = "cancelled"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusOpen, TaskStatusAssigned, TaskStatusCompleted, TaskStatusPaid, TaskStatusCancelled:
		return true
	}
	return false
}

// HasBuddy сообщает, должен ли у задачи в этом статусе быть исполнитель.
func (s TaskStatus) HasBuddy() bool {
	switch s {
	case TaskStatusAssigned, TaskStatusCompleted, TaskStatusPaid:
		return true
	}
	return false
}

// taskTransitions задаёт допустимые переходы. Из paid и cancelled выхода нет.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusOpen:      {TaskStatusAssigned, TaskStatusCancelled},
	TaskStatusAssigned:  {TaskStatusCompleted, TaskStatusCancelled},
	TaskStatusCompleted: {TaskStatusPaid},
	TaskStatusPaid:      {},
	TaskStatusCancelled: {},
}

func (s TaskStatus) CanTransitionTo(newStatus TaskStatus) bool {
	return slices.Contains(taskTransitions[s], newStatus)
}

func NewTaskStatus(status string) (TaskStatus, error) {
	s := TaskStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "invalid task status")
	}
	return s, nil
}

type TransactionType string

const (
	TransactionTypeRelease  TransactionType = "release"
	TransactionTypeWithdraw TransactionType = "withdraw"
	TransactionTypeDeposit  TransactionType = "deposit"
	TransactionTypeLock     TransactionType = "lock"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeRelease, TransactionTypeWithdraw, TransactionTypeDeposit, TransactionTypeLock:
		return true
	}
	return false
}

func NewTransactionType(value string) (TransactionType, error) {
	t := TransactionType(value)
	if !t.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "invalid transaction type")
	}
	return t, nil
}

type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusPending TransactionStatus = "pending"
)

type NotificationType string

const (
	NotificationTaskAccepted     NotificationType = "TASK_ACCEPTED"
	NotificationPaymentRequested NotificationType = "PAYMENT_REQUESTED"
	NotificationPaymentReleased  NotificationType = "PAYMENT_RELEASED"
	NotificationTaskCancelled    NotificationType = "TASK_CANCELLED"
)
