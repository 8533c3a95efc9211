package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/cache"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/valueobject"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	cachePrefix = "leaderboard:"
)

type Entry struct {
	Rank      int
	UserID    uuid.UUID
	Name      string
	PhotoPath *string
	XP        int64
	Level     valueobject.Level
}

// UseCase отдаёт рейтинг пользователей по XP и кэширует его на ttl.
// Выплата сбрасывает кэш через Invalidate.
type UseCase struct {
	users repository.UserRepository
	cache *cache.Cache
	ttl   time.Duration
}

func NewUseCase(users repository.UserRepository, c *cache.Cache, ttl time.Duration) *UseCase {
	return &UseCase{users: users, cache: c, ttl: ttl}
}

func (uc *UseCase) Execute(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if uc.cache == nil || uc.ttl <= 0 {
		return uc.load(ctx, limit)
	}

	value, err := uc.cache.GetOrSet(fmt.Sprintf("%s%d", cachePrefix, limit), uc.ttl, func() (any, error) {
		return uc.load(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	return value.([]Entry), nil
}

func (uc *UseCase) Invalidate() {
	if uc.cache != nil {
		uc.cache.InvalidateByPrefix(cachePrefix)
	}
}

func (uc *UseCase) load(ctx context.Context, limit int) ([]Entry, error) {
	users, err := uc.users.TopByXP(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(users))
	for i, u := range users {
		entries[i] = Entry{
			Rank:      i + 1,
			UserID:    u.ID,
			Name:      u.Name,
			PhotoPath: u.PhotoPath,
			XP:        u.XP,
			Level:     u.Level(),
		}
	}
	return entries, nil
}
