package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

// sqlTx выполняет операции внутри одной транзакции Store.RunInTx.
type sqlTx struct {
	tx *sqlx.Tx
}

var _ repository.Tx = (*sqlTx)(nil)

func (t *sqlTx) GetTask(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	var row taskRow
	query := t.tx.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	if err := t.tx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrTaskNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to load task")
	}
	return row.toEntity(), nil
}

func (t *sqlTx) CreateTask(ctx context.Context, task *entity.Task) error {
	if err := task.CheckInvariants(); err != nil {
		return err
	}
	query := t.tx.Rebind(`INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := t.tx.ExecContext(ctx, query,
		task.ID,
		task.PosterID,
		toNullUUID(task.BuddyID),
		task.Title,
		task.Description,
		task.Category,
		task.Location,
		task.Budget.Int64(),
		string(task.Status),
		task.Version,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to create task")
	}
	return nil
}

// UpdateTask пишет задачу, только если её версия не изменилась с момента чтения.
func (t *sqlTx) UpdateTask(ctx context.Context, task *entity.Task) error {
	if err := task.CheckInvariants(); err != nil {
		return err
	}
	query := t.tx.Rebind(`
		UPDATE tasks
		SET buddy_id = ?, title = ?, description = ?, category = ?, location = ?,
		    budget = ?, status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`)
	result, err := t.tx.ExecContext(ctx, query,
		toNullUUID(task.BuddyID),
		task.Title,
		task.Description,
		task.Category,
		task.Location,
		task.Budget.Int64(),
		string(task.Status),
		task.UpdatedAt,
		task.ID,
		task.Version,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to update task")
	}
	if err := checkSwapped(result); err != nil {
		return err
	}
	task.Version++
	return nil
}

func (t *sqlTx) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var row userRow
	query := t.tx.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := t.tx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to load user")
	}
	return row.toEntity(), nil
}

func (t *sqlTx) CreateUser(ctx context.Context, user *entity.User) error {
	query := t.tx.Rebind(`INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := t.tx.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Location,
		nullString(user.PhotoPath),
		user.WalletBalance.Int64(),
		user.XP,
		user.Version,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrEmailTaken
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to create user")
	}
	return nil
}

// UpdateUser меняет только кошелёк и XP. Поля профиля пишет
// UserRepository.UpdateProfile, поэтому правка профиля не конфликтует
// с выплатами.
func (t *sqlTx) UpdateUser(ctx context.Context, user *entity.User) error {
	query := t.tx.Rebind(`
		UPDATE users
		SET wallet_balance = ?, xp = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`)
	result, err := t.tx.ExecContext(ctx, query,
		user.WalletBalance.Int64(),
		user.XP,
		user.UpdatedAt,
		user.ID,
		user.Version,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to update user")
	}
	if err := checkSwapped(result); err != nil {
		return err
	}
	user.Version++
	return nil
}

func (t *sqlTx) AppendLedger(ctx context.Context, entry *entity.LedgerEntry) error {
	query := t.tx.Rebind(`INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := t.tx.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		toNullUUID(entry.TaskID),
		string(entry.Type),
		entry.Amount.Int64(),
		string(entry.Status),
		entry.CreatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to append ledger entry")
	}
	return nil
}

func (t *sqlTx) CreateNotification(ctx context.Context, n *entity.Notification) error {
	query := t.tx.Rebind(`INSERT INTO notifications (` + notificationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := t.tx.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		toNullUUID(n.TaskID),
		n.Title,
		n.Message,
		string(n.Type),
		n.IsRead,
		n.CreatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to create notification")
	}
	return nil
}

// checkSwapped превращает «ноль обновлённых строк» в конфликт версии.
func checkSwapped(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to check update result")
	}
	if rows == 0 {
		return repository.ErrVersionConflict
	}
	return nil
}
