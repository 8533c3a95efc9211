package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?`

	var rows []notificationRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), userID, limit, offset); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to list notifications")
	}
	result := make([]*entity.Notification, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = FALSE`)
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to count notifications")
	}
	return count, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	query := r.db.Rebind(`UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?`)
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to mark notification as read")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to check update result")
	}
	if rows == 0 {
		return apperror.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	query := r.db.Rebind(`UPDATE notifications SET is_read = TRUE WHERE user_id = ? AND is_read = FALSE`)
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to mark notifications as read")
	}
	return nil
}
