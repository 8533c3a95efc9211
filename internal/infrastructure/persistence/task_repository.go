package persistence

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	var row taskRow
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrTaskNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to load task")
	}
	return row.toEntity(), nil
}

// List возвращает страницу задач, новые сверху, и общее число подходящих.
func (r *TaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]*entity.Task, int, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.PosterID != nil {
		conds = append(conds, "poster_id = ?")
		args = append(args, *filter.PosterID)
	}
	if filter.BuddyID != nil {
		conds = append(conds, "buddy_id = ?")
		args = append(args, *filter.BuddyID)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM tasks`+where), args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to count tasks")
	}

	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks` + where +
		` ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?`)
	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, append(args, filter.Limit, filter.Offset)...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to list tasks")
	}

	tasks := make([]*entity.Task, len(rows))
	for i := range rows {
		tasks[i] = rows[i].toEntity()
	}
	return tasks, total, nil
}
