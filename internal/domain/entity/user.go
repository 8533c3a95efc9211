package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/valueobject"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

const (
	// StartingBalance начисляется каждому новому пользователю.
	StartingBalance valueobject.Money = 1000
	// PaymentXPReward получает исполнитель за каждую оплаченную задачу.
	PaymentXPReward int64 = 10
)

type User struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	Name          string
	Location      string
	PhotoPath     *string
	WalletBalance valueobject.Money
	XP            int64
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewUser создаёт пользователя со стартовым балансом. Сам баланс
// подтверждается записью deposit в журнале, её пишет сервис регистрации.
func NewUser(email, passwordHash, name string) *User {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		name = email
	}
	now := time.Now().UTC()
	return &User{
		ID:            uuid.New(),
		Email:         email,
		PasswordHash:  passwordHash,
		Name:          name,
		WalletBalance: StartingBalance,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (u *User) Credit(amount valueobject.Money) {
	u.WalletBalance += amount
	u.touch()
}

func (u *User) Debit(amount valueobject.Money) error {
	if amount > u.WalletBalance {
		return apperror.ErrInsufficientFunds
	}
	u.WalletBalance -= amount
	u.touch()
	return nil
}

func (u *User) AwardXP(xp int64) {
	if xp <= 0 {
		return
	}
	u.XP += xp
	u.touch()
}

func (u *User) Level() valueobject.Level {
	return valueobject.LevelForXP(u.XP)
}

func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}
