package chat

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/event"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

type SendMessageUseCase struct {
	tasks    repository.TaskRepository
	messages repository.MessageRepository
	pub      event.Publisher
}

func NewSendMessageUseCase(tasks repository.TaskRepository, messages repository.MessageRepository, pub event.Publisher) *SendMessageUseCase {
	return &SendMessageUseCase{tasks: tasks, messages: messages, pub: pub}
}

// Execute сохраняет сообщение участника задачи и доставляет его
// всем участникам, включая другие подключения отправителя.
func (uc *SendMessageUseCase) Execute(ctx context.Context, taskID, senderID uuid.UUID, content string) (*entity.Message, error) {
	task, err := loadForParticipant(ctx, uc.tasks, taskID, senderID)
	if err != nil {
		return nil, err
	}

	msg, err := entity.NewMessage(task.ID, senderID, content)
	if err != nil {
		return nil, err
	}
	if err := uc.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if uc.pub != nil {
		payload := event.NewChatMessagePosted(msg)
		uc.pub.Publish(task.PosterID, event.ChatMessage, payload)
		if task.BuddyID != nil {
			uc.pub.Publish(*task.BuddyID, event.ChatMessage, payload)
		}
	}
	return msg, nil
}

type ListMessagesUseCase struct {
	tasks    repository.TaskRepository
	messages repository.MessageRepository
}

func NewListMessagesUseCase(tasks repository.TaskRepository, messages repository.MessageRepository) *ListMessagesUseCase {
	return &ListMessagesUseCase{tasks: tasks, messages: messages}
}

func (uc *ListMessagesUseCase) Execute(ctx context.Context, taskID, userID uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	if _, err := loadForParticipant(ctx, uc.tasks, taskID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uc.messages.ListByTask(ctx, taskID, limit, offset)
}

func loadForParticipant(ctx context.Context, tasks repository.TaskRepository, taskID, userID uuid.UUID) (*entity.Task, error) {
	task, err := tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsParticipant(userID) {
		return nil, apperror.ErrNotParticipant
	}
	return task, nil
}
