package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/valueobject"
	"github.com/ignatzorin/taskbuddy-backend/internal/logger"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
	"github.com/ignatzorin/taskbuddy-backend/internal/validation"
)

// AuthService инкапсулирует бизнес-логику регистрации и аутентификации.
type AuthService struct {
	tx           repository.Transactor
	users        repository.UserRepository
	tokenManager *TokenManager
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User  *entity.User
	Token *AccessToken
}

func NewAuthService(tx repository.Transactor, users repository.UserRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		tx:           tx,
		users:        users,
		tokenManager: tokenManager,
	}
}

// Register создаёт пользователя со стартовым балансом. Стартовый баланс
// сразу отражается записью deposit, чтобы журнал сходился с кошельком.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to hash password")
	}

	user := entity.NewUser(in.Email, string(passHash), strings.TrimSpace(in.Name))

	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		deposit := entity.NewLedgerEntry(user.ID, nil, valueobject.TransactionTypeDeposit, entity.StartingBalance)
		return tx.AppendLedger(ctx, deposit)
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokenManager.Generate(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to issue token")
	}

	logger.Log.WithField("user_id", user.ID).Info("auth service: зарегистрирован новый пользователь")
	return &AuthResult{User: user, Token: token}, nil
}

// Login проверяет учётные данные и возвращает токен.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrUserNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"user_id": user.ID,
		}).Debug("auth service: неверный пароль")
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.tokenManager.Generate(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to issue token")
	}

	return &AuthResult{User: user, Token: token}, nil
}
