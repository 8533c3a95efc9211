package valueobject

import (
	"fmt"

	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

// MaxBudget ограничивает бюджет одной задачи.
const MaxBudget Money = 10_000_000

// Money хранит сумму в целых единицах валюты (рупиях).
type Money int64

// NewPositiveMoney используется для бюджетов и сумм операций кошелька.
func NewPositiveMoney(amount int64) (Money, error) {
	if amount <= 0 {
		return 0, apperror.New(apperror.ErrCodeValidation, "amount must be positive")
	}
	if Money(amount) > MaxBudget {
		return 0, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("amount must not exceed %d", MaxBudget))
	}
	return Money(amount), nil
}

func (m Money) Int64() int64 {
	return int64(m)
}

func (m Money) String() string {
	return fmt.Sprintf("₹%d", int64(m))
}
