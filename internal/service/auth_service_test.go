package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/valueobject"
	"github.com/ignatzorin/taskbuddy-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

func newTestAuthService() (*AuthService, *memory.Store) {
	store := memory.NewStore(3)
	tm := NewTokenManager("test-secret-test-secret-test-secret", time.Hour)
	return NewAuthService(store, store.Users(), tm), store
}

func TestAuthService_Register(t *testing.T) {
	svc, store := newTestAuthService()

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  New.User@Example.com ",
		Password: "Secret123",
		Name:     "New User",
	})

	assert.NoError(t, err)
	assert.Equal(t, "new.user@example.com", result.User.Email)
	assert.Equal(t, entity.StartingBalance, result.User.WalletBalance)
	assert.Equal(t, int64(0), result.User.XP)
	assert.NotEmpty(t, result.Token.Token)
	assert.NotEqual(t, "Secret123", result.User.PasswordHash)

	entries, err := store.Ledger().ListByUser(context.Background(), result.User.ID, repository.LedgerFilter{})
	assert.NoError(t, err)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, valueobject.TransactionTypeDeposit, entries[0].Type)
		assert.Equal(t, entity.StartingBalance, entries[0].Amount)
	}

	userID, err := svc.tokenManager.ParseAccess(result.Token.Token)
	assert.NoError(t, err)
	assert.Equal(t, result.User.ID, userID)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService()
	in := RegisterInput{Email: "dup@example.com", Password: "Secret123"}

	_, err := svc.Register(context.Background(), in)
	assert.NoError(t, err)

	in.Email = "DUP@example.com"
	_, err = svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, apperror.ErrEmailTaken)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), RegisterInput{Email: "bad", Password: "Secret123"})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Register(context.Background(), RegisterInput{Email: "ok@example.com", Password: "weak"})
	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := newTestAuthService()
	registered, err := svc.Register(context.Background(), RegisterInput{Email: "login@example.com", Password: "Secret123"})
	assert.NoError(t, err)

	result, err := svc.Login(context.Background(), LoginInput{Email: "LOGIN@example.com", Password: "Secret123"})
	assert.NoError(t, err)
	assert.Equal(t, registered.User.ID, result.User.ID)

	_, err = svc.Login(context.Background(), LoginInput{Email: "login@example.com", Password: "Wrong1234"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "Secret123"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}
