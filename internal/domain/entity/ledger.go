package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/valueobject"
)

// LedgerEntry описывает запись журнала операций кошелька. Записи только добавляются.
type LedgerEntry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TaskID    *uuid.UUID
	Type      valueobject.TransactionType
	Amount    valueobject.Money
	Status    valueobject.TransactionStatus
	CreatedAt time.Time
}

func NewLedgerEntry(userID uuid.UUID, taskID *uuid.UUID, typ valueobject.TransactionType, amount valueobject.Money) *LedgerEntry {
	return &LedgerEntry{
		ID:        uuid.New(),
		UserID:    userID,
		TaskID:    taskID,
		Type:      typ,
		Amount:    amount,
		Status:    valueobject.TransactionStatusSuccess,
		CreatedAt: time.Now().UTC(),
	}
}

// NewReleaseEntries возвращает пару записей выплаты: зачисление исполнителю
// и информационное списание у автора.
func NewReleaseEntries(task *Task) (credit *LedgerEntry, debit *LedgerEntry) {
	taskID := task.ID
	credit = NewLedgerEntry(*task.BuddyID, &taskID, valueobject.TransactionTypeRelease, task.Budget)
	debit = NewLedgerEntry(task.PosterID, &taskID, valueobject.TransactionTypeWithdraw, task.Budget)
	return credit, debit
}
