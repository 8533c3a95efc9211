package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE user_id = ?`
	args := []any{userID}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	query += ` ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	var rows []ledgerRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to list transactions")
	}
	return ledgerEntities(rows), nil
}

func (r *LedgerRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*entity.LedgerEntry, error) {
	var rows []ledgerRow
	query := r.db.Rebind(`SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE task_id = ? ORDER BY created_at ASC, id ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, taskID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to list task transactions")
	}
	return ledgerEntities(rows), nil
}

func ledgerEntities(rows []ledgerRow) []*entity.LedgerEntry {
	entries := make([]*entity.LedgerEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].toEntity()
	}
	return entries
}
