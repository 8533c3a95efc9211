package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
)

// ErrVersionConflict возвращается из Tx, когда запись изменилась после чтения.
// Transactor перехватывает её и перезапускает транзакционную функцию.
var ErrVersionConflict = errors.New("repository: запись изменена конкурентно")

// Tx описывает операции, доступные внутри одной атомарной транзакции.
// Update* выполняют compare-and-set по полю Version и увеличивают его.
type Tx interface {
	GetTask(ctx context.Context, id uuid.UUID) (*entity.Task, error)
	CreateTask(ctx context.Context, task *entity.Task) error
	UpdateTask(ctx context.Context, task *entity.Task) error

	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) error
	UpdateUser(ctx context.Context, user *entity.User) error

	AppendLedger(ctx context.Context, entry *entity.LedgerEntry) error
	CreateNotification(ctx context.Context, notification *entity.Notification) error
}

// Transactor выполняет fn атомарно. При ErrVersionConflict fn запускается
// заново на свежем снимке; все прочие ошибки fn откатывают транзакцию и
// возвращаются как есть. fn должна быть идемпотентной относительно своих
// чтений: побочные эффекты вне Tx делаются только после успешного RunInTx.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
