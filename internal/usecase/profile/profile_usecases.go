package profile

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/taskbuddy-backend/internal/domain/entity"
	"github.com/ignatzorin/taskbuddy-backend/internal/domain/repository"
	"github.com/ignatzorin/taskbuddy-backend/internal/logger"
	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

const (
	MaxNameLength     = 100
	MaxLocationLength = 100
)

// AvatarStorage сохраняет файлы аватаров и возвращает относительный путь.
type AvatarStorage interface {
	Save(ctx context.Context, userID uuid.UUID, ext string, r io.Reader) (string, error)
	Delete(ctx context.Context, relativePath string) error
}

type GetProfileUseCase struct {
	users repository.UserRepository
}

func NewGetProfileUseCase(users repository.UserRepository) *GetProfileUseCase {
	return &GetProfileUseCase{users: users}
}

func (uc *GetProfileUseCase) Execute(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return uc.users.FindByID(ctx, userID)
}

type UpdateProfileInput struct {
	Name     *string
	Location *string
}

type UpdateProfileUseCase struct {
	users repository.UserRepository
}

func NewUpdateProfileUseCase(users repository.UserRepository) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{users: users}
}

// Execute меняет только переданные поля. Баланс и XP здесь не редактируются.
func (uc *UpdateProfileUseCase) Execute(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
			return nil, apperror.New(apperror.ErrCodeValidation, "name must be between 1 and 100 characters")
		}
		user.Name = name
	}
	if input.Location != nil {
		location := strings.TrimSpace(*input.Location)
		if utf8.RuneCountInString(location) > MaxLocationLength {
			return nil, apperror.New(apperror.ErrCodeValidation, "location must not exceed 100 characters")
		}
		user.Location = location
	}

	if err := uc.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type UploadAvatarUseCase struct {
	users   repository.UserRepository
	storage AvatarStorage
}

func NewUploadAvatarUseCase(users repository.UserRepository, storage AvatarStorage) *UploadAvatarUseCase {
	return &UploadAvatarUseCase{users: users, storage: storage}
}

// Execute сохраняет новый аватар и удаляет предыдущий файл.
// ext должен быть определён вызывающим по содержимому файла.
func (uc *UploadAvatarUseCase) Execute(ctx context.Context, userID uuid.UUID, ext string, r io.Reader) (*entity.User, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	path, err := uc.storage.Save(ctx, userID, ext, r)
	if err != nil {
		return nil, err
	}

	previous := user.PhotoPath
	user.PhotoPath = &path
	if err := uc.users.UpdateProfile(ctx, user); err != nil {
		_ = uc.storage.Delete(ctx, path)
		return nil, err
	}

	if previous != nil && *previous != path {
		if err := uc.storage.Delete(ctx, *previous); err != nil {
			logger.Log.WithError(err).WithFields(logrus.Fields{
				"user_id": userID,
				"path":    *previous,
			}).Warn("не удалось удалить старый аватар")
		}
	}
	return user, nil
}
