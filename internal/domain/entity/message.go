package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

const MaxMessageLength = 2000

// Message описывает сообщение в чате задачи между автором и исполнителем.
type Message struct {
	ID        uuid.UUID
	TaskID    uuid.UUID
	SenderID  uuid.UUID
	Content   string
	CreatedAt time.Time
}

func NewMessage(taskID, senderID uuid.UUID, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "message cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, apperror.New(apperror.ErrCodeValidation, "message must not exceed 2000 characters")
	}
	return &Message{
		ID:        uuid.New(),
		TaskID:    taskID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}, nil
}
