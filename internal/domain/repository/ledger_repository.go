package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/valueobject"
)

type LedgerRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID, filter LedgerFilter) ([]*entity.LedgerEntry, error)
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*entity.LedgerEntry, error)
}

type LedgerFilter struct {
	Type   valueobject.TransactionType
	Limit  int
	Offset int
}
