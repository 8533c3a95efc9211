package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *entity.Message) error {
	query := r.db.Rebind(`INSERT INTO messages (` + messageColumns + `) VALUES (?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, msg.ID, msg.TaskID, msg.SenderID, msg.Content, msg.CreatedAt); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to save message")
	}
	return nil
}

// ListByTask возвращает переписку в хронологическом порядке.
func (r *MessageRepository) ListByTask(ctx context.Context, taskID uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	var rows []messageRow
	query := r.db.Rebind(`SELECT ` + messageColumns + ` FROM messages WHERE task_id = ? ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &rows, query, taskID, limit, offset); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to list messages")
	}
	result := make([]*entity.Message, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}
