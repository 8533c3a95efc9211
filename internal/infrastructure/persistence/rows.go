package persistence

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/valueobject"
)

const (
	taskColumns         = `id, poster_id, buddy_id, title, description, category, location, budget, status, version, created_at, updated_at`
	userColumns         = `id, email, password_hash, name, location, photo_path, wallet_balance, xp, version, created_at, updated_at`
	ledgerColumns       = `id, user_id, task_id, type, amount, status, created_at`
	notificationColumns = `id, user_id, task_id, title, message, type, is_read, created_at`
	messageColumns      = `id, task_id, sender_id, content, created_at`
)

type taskRow struct {
	ID          uuid.UUID     `db:"id"`
	PosterID    uuid.UUID     `db:"poster_id"`
	BuddyID     uuid.NullUUID `db:"buddy_id"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	Category    string        `db:"category"`
	Location    string        `db:"location"`
	Budget      int64         `db:"budget"`
	Status      string        `db:"status"`
	Version     int64         `db:"version"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func (r *taskRow) toEntity() *entity.Task {
	return &entity.Task{
		ID:          r.ID,
		PosterID:    r.PosterID,
		BuddyID:     fromNullUUID(r.BuddyID),
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Location:    r.Location,
		Budget:      valueobject.Money(r.Budget),
		Status:      valueobject.TaskStatus(r.Status),
		Version:     r.Version,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type userRow struct {
	ID            uuid.UUID      `db:"id"`
	Email         string         `db:"email"`
	PasswordHash  string         `db:"password_hash"`
	Name          string         `db:"name"`
	Location      string         `db:"location"`
	PhotoPath     sql.NullString `db:"photo_path"`
	WalletBalance int64          `db:"wallet_balance"`
	XP            int64          `db:"xp"`
	Version       int64          `db:"version"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r *userRow) toEntity() *entity.User {
	u := &entity.User{
		ID:            r.ID,
		Email:         r.Email,
		PasswordHash:  r.PasswordHash,
		Name:          r.Name,
		Location:      r.Location,
		WalletBalance: valueobject.Money(r.WalletBalance),
		XP:            r.XP,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if r.PhotoPath.Valid {
		path := r.PhotoPath.String
		u.PhotoPath = &path
	}
	return u
}

type ledgerRow struct {
	ID        uuid.UUID     `db:"id"`
	UserID    uuid.UUID     `db:"user_id"`
	TaskID    uuid.NullUUID `db:"task_id"`
	Type      string        `db:"type"`
	Amount    int64         `db:"amount"`
	Status    string        `db:"status"`
	CreatedAt time.Time     `db:"created_at"`
}

func (r *ledgerRow) toEntity() *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID:        r.ID,
		UserID:    r.UserID,
		TaskID:    fromNullUUID(r.TaskID),
		Type:      valueobject.TransactionType(r.Type),
		Amount:    valueobject.Money(r.Amount),
		Status:    valueobject.TransactionStatus(r.Status),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type notificationRow struct {
	ID        uuid.UUID     `db:"id"`
	UserID    uuid.UUID     `db:"user_id"`
	TaskID    uuid.NullUUID `db:"task_id"`
	Title     string        `db:"title"`
	Message   string        `db:"message"`
	Type      string        `db:"type"`
	IsRead    bool          `db:"is_read"`
	CreatedAt time.Time     `db:"created_at"`
}

func (r *notificationRow) toEntity() *entity.Notification {
	return &entity.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		TaskID:    fromNullUUID(r.TaskID),
		Title:     r.Title,
		Message:   r.Message,
		Type:      valueobject.NotificationType(r.Type),
		IsRead:    r.IsRead,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type messageRow struct {
	ID        uuid.UUID `db:"id"`
	TaskID    uuid.UUID `db:"task_id"`
	SenderID  uuid.UUID `db:"sender_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *messageRow) toEntity() *entity.Message {
	return &entity.Message{
		ID:        r.ID,
		TaskID:    r.TaskID,
		SenderID:  r.SenderID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func fromNullUUID(v uuid.NullUUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := v.UUID
	return &id
}

func toNullUUID(v *uuid.UUID) uuid.NullUUID {
	if v == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// isUniqueViolation распознаёт нарушение UNIQUE в обоих поддерживаемых драйверах.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
