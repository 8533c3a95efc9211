package persistence

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
	"github.com/ignatzorin/taskbuddy-backend/internal/logger"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

const (
	DefaultMaxAttempts  = 5
	DefaultRetryBackoff = 20 * time.Millisecond
)

// Store реализует repository.Transactor поверх sqlx с оптимистичной
// блокировкой: конфликт версии откатывает транзакцию и запускает fn заново.
type Store struct {
	db          *sqlx.DB
	maxAttempts int
	backoff     time.Duration
}

func NewStore(db *sqlx.DB, maxAttempts int, backoff time.Duration) *Store {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	if backoff < 0 {
		backoff = DefaultRetryBackoff
	}
	return &Store{db: db, maxAttempts: maxAttempts, backoff: backoff}
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err := s.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return err
		}

		logger.Log.WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": s.maxAttempts,
		}).Debug("persistence: конфликт версий, транзакция будет повторена")

		if attempt < s.maxAttempts {
			if err := s.sleep(ctx, attempt); err != nil {
				return err
			}
		}
	}

	logger.Log.WithField("max_attempts", s.maxAttempts).Warn("persistence: транзакция не прошла из-за конкурентных изменений")
	return apperror.ErrTxAborted
}

func (s *Store) runOnce(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to start transaction")
	}
	defer tx.Rollback()

	if err := fn(ctx, &sqlTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "failed to commit transaction")
	}
	return nil
}

// sleep ждёт растущую паузу со случайной добавкой, чтобы конкуренты
// не сталкивались повторно в один и тот же момент.
func (s *Store) sleep(ctx context.Context, attempt int) error {
	if s.backoff == 0 {
		return nil
	}
	wait := s.backoff*time.Duration(attempt) + rand.N(s.backoff)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("persistence: ожидание повтора прервано: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
