package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// UpdateProfile меняет только публичные поля профиля и не трогает
	// баланс, XP и версию записи.
	UpdateProfile(ctx context.Context, user *entity.User) error
	TopByXP(ctx context.Context, limit int) ([]*entity.User, error)
}
