package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/valueobject"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

const (
	MinTaskTitleLength       = 3
	MaxTaskTitleLength       = 200
	MaxTaskDescriptionLength = 5000
	MaxTaskLocationLength    = 100
)

type Task struct {
	ID          uuid.UUID
	PosterID    uuid.UUID
	BuddyID     *uuid.UUID
	Title       string
	Description string
	Category    string
	Location    string
	Budget      valueobject.Money
	Status      valueobject.TaskStatus
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewTask(posterID uuid.UUID, title, description, category, location string, budget int64) (*Task, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	location = strings.TrimSpace(location)

	if posterID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	if n := utf8.RuneCountInString(title); n < MinTaskTitleLength || n > MaxTaskTitleLength {
		return nil, apperror.New(apperror.ErrCodeValidation, "title must be between 3 and 200 characters")
	}
	if utf8.RuneCountInString(description) > MaxTaskDescriptionLength {
		return nil, apperror.New(apperror.ErrCodeValidation, "description must not exceed 5000 characters")
	}
	if utf8.RuneCountInString(location) > MaxTaskLocationLength {
		return nil, apperror.New(apperror.ErrCodeValidation, "location must not exceed 100 characters")
	}
	if !valueobject.IsValidCategory(category) {
		return nil, apperror.New(apperror.ErrCodeValidation, "unknown category")
	}

	amount, err := valueobject.NewPositiveMoney(budget)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Task{
		ID:          uuid.New(),
		PosterID:    posterID,
		Title:       title,
		Description: description,
		Category:    category,
		Location:    location,
		Budget:      amount,
		Status:      valueobject.TaskStatusOpen,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Accept назначает исполнителя. Сначала проверяется статус, затем запрет
// на свою задачу: на занятую задачу автор получит ErrTaskNotOpen.
func (t *Task) Accept(buddyID uuid.UUID) error {
	if buddyID == uuid.Nil {
		return apperror.ErrUnauthorized
	}
	if !t.Status.CanTransitionTo(valueobject.TaskStatusAssigned) {
		return apperror.ErrTaskNotOpen
	}
	if t.PosterID == buddyID {
		return apperror.ErrSelfAccept
	}

	t.Status = valueobject.TaskStatusAssigned
	t.BuddyID = &buddyID
	t.touch()
	return nil
}

// RequestPayment переводит задачу в completed по запросу исполнителя.
func (t *Task) RequestPayment(actorID uuid.UUID) error {
	if !t.IsAssignedTo(actorID) {
		return apperror.ErrNotTaskBuddy
	}
	if !t.Status.CanTransitionTo(valueobject.TaskStatusCompleted) {
		return apperror.ErrTaskNotAssigned
	}

	t.Status = valueobject.TaskStatusCompleted
	t.touch()
	return nil
}

// MarkPaid закрывает задачу после выплаты. Деньги двигает вызывающий код
// в той же транзакции.
func (t *Task) MarkPaid(actorID uuid.UUID) error {
	if !t.IsPostedBy(actorID) {
		return apperror.ErrNotTaskPoster
	}
	if !t.Status.CanTransitionTo(valueobject.TaskStatusPaid) {
		return apperror.ErrTaskNotCompleted
	}
	if t.BuddyID == nil {
		return apperror.New(apperror.ErrCodeInternal, "completed task has no buddy")
	}

	t.Status = valueobject.TaskStatusPaid
	t.touch()
	return nil
}

// Cancel отменяет задачу. Открытую задачу может отменить только автор,
// назначенную может отменить автор или исполнитель. Возвращает вторую сторону, которую
// нужно уведомить (nil, если её нет).
func (t *Task) Cancel(actorID uuid.UUID) (*uuid.UUID, error) {
	if !t.Status.CanTransitionTo(valueobject.TaskStatusCancelled) {
		return nil, apperror.ErrTaskNotCancelable
	}

	var counterpart *uuid.UUID
	switch {
	case t.BuddyID == nil:
		if !t.IsPostedBy(actorID) {
			return nil, apperror.ErrNotTaskPoster
		}
	case t.IsPostedBy(actorID):
		buddy := *t.BuddyID
		counterpart = &buddy
	case t.IsAssignedTo(actorID):
		poster := t.PosterID
		counterpart = &poster
	default:
		return nil, apperror.ErrNotParticipant
	}

	t.Status = valueobject.TaskStatusCancelled
	t.BuddyID = nil
	t.touch()
	return counterpart, nil
}

func (t *Task) IsPostedBy(userID uuid.UUID) bool {
	return t.PosterID == userID
}

func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	return t.BuddyID != nil && *t.BuddyID == userID
}

// IsParticipant true для автора и назначенного исполнителя.
func (t *Task) IsParticipant(userID uuid.UUID) bool {
	return t.IsPostedBy(userID) || t.IsAssignedTo(userID)
}

// CheckInvariants проверяет связь статуса и исполнителя.
func (t *Task) CheckInvariants() error {
	if t.Status.HasBuddy() != (t.BuddyID != nil) {
		return apperror.New(apperror.ErrCodeInternal, "buddy must be set exactly when the task is assigned, completed or paid")
	}
	if t.BuddyID != nil && *t.BuddyID == t.PosterID {
		return apperror.New(apperror.ErrCodeInternal, "poster cannot be the buddy")
	}
	return nil
}

func (t *Task) touch() {
	t.UpdatedAt = time.Now().UTC()
}
