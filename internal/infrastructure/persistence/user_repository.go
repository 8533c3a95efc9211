package persistence

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, `id = ?`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, `email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepository) findOne(ctx context.Context, cond string, arg any) (*entity.User, error) {
	var row userRow
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + cond)
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to load user")
	}
	return row.toEntity(), nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now().UTC()
	query := r.db.Rebind(`UPDATE users SET name = ?, location = ?, photo_path = ?, updated_at = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Location,
		nullString(user.PhotoPath),
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to update profile")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to check update result")
	}
	if rows == 0 {
		return apperror.ErrUserNotFound
	}
	return nil
}

// TopByXP строит рейтинг: больше XP выше, при равенстве выше тот, кто раньше зарегистрировался.
func (r *UserRepository) TopByXP(ctx context.Context, limit int) ([]*entity.User, error) {
	var rows []userRow
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users ORDER BY xp DESC, created_at ASC, id ASC LIMIT ?`)
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to load leaderboard")
	}
	users := make([]*entity.User, len(rows))
	for i := range rows {
		users[i] = rows[i].toEntity()
	}
	return users, nil
}
