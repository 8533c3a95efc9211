package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/event"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/valueobject"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

type GetWalletUseCase struct {
	users repository.UserRepository
}

func NewGetWalletUseCase(users repository.UserRepository) *GetWalletUseCase {
	return &GetWalletUseCase{users: users}
}

func (uc *GetWalletUseCase) Execute(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return uc.users.FindByID(ctx, userID)
}

type ListTransactionsInput struct {
	UserID uuid.UUID
	Type   string
	Limit  int
	Offset int
}

type ListTransactionsUseCase struct {
	ledger repository.LedgerRepository
}

func NewListTransactionsUseCase(ledger repository.LedgerRepository) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{ledger: ledger}
}

// Execute возвращает историю операций пользователя, новые сверху.
func (uc *ListTransactionsUseCase) Execute(ctx context.Context, input ListTransactionsInput) ([]*entity.LedgerEntry, error) {
	filter := repository.LedgerFilter{Limit: input.Limit, Offset: input.Offset}
	if input.Type != "" {
		typ, err := valueobject.NewTransactionType(input.Type)
		if err != nil {
			return nil, err
		}
		filter.Type = typ
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultHistoryLimit
	}
	if filter.Limit > MaxHistoryLimit {
		filter.Limit = MaxHistoryLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.ledger.ListByUser(ctx, input.UserID, filter)
}

type DepositUseCase struct {
	tx  repository.Transactor
	pub event.Publisher
}

func NewDepositUseCase(tx repository.Transactor, pub event.Publisher) *DepositUseCase {
	return &DepositUseCase{tx: tx, pub: pub}
}

// Execute пополняет кошелёк и пишет запись deposit в той же транзакции.
func (uc *DepositUseCase) Execute(ctx context.Context, userID uuid.UUID, amount int64) (*entity.User, error) {
	money, err := valueobject.NewPositiveMoney(amount)
	if err != nil {
		return nil, err
	}

	return applyWalletChange(ctx, uc.tx, uc.pub, userID, valueobject.TransactionTypeDeposit, money, func(u *entity.User) error {
		u.Credit(money)
		return nil
	})
}

type WithdrawUseCase struct {
	tx  repository.Transactor
	pub event.Publisher
}

func NewWithdrawUseCase(tx repository.Transactor, pub event.Publisher) *WithdrawUseCase {
	return &WithdrawUseCase{tx: tx, pub: pub}
}

// Execute списывает сумму с кошелька. Баланс никогда не уходит в минус.
func (uc *WithdrawUseCase) Execute(ctx context.Context, userID uuid.UUID, amount int64) (*entity.User, error) {
	money, err := valueobject.NewPositiveMoney(amount)
	if err != nil {
		return nil, err
	}

	return applyWalletChange(ctx, uc.tx, uc.pub, userID, valueobject.TransactionTypeWithdraw, money, func(u *entity.User) error {
		return u.Debit(money)
	})
}

func applyWalletChange(
	ctx context.Context,
	transactor repository.Transactor,
	pub event.Publisher,
	userID uuid.UUID,
	typ valueobject.TransactionType,
	amount valueobject.Money,
	change func(*entity.User) error,
) (*entity.User, error) {
	var updated *entity.User

	err := transactor.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if err := change(user); err != nil {
			return err
		}
		if err := tx.UpdateUser(ctx, user); err != nil {
			return err
		}
		if err := tx.AppendLedger(ctx, entity.NewLedgerEntry(user.ID, nil, typ, amount)); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	if pub != nil {
		pub.Publish(updated.ID, event.WalletUpdated, event.NewWalletChanged(updated))
	}
	return updated, nil
}
