package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

var ErrTooLarge = apperror.New(apperror.ErrCodeValidation, "file is too large")

// AvatarStorage хранит аватары пользователей на локальном диске.
type AvatarStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// DefaultMaxUploadMB используется, если лимит не задан.
const DefaultMaxUploadMB = 5

func NewAvatarStorage(rootPath string, maxUploadMB int64) (*AvatarStorage, error) {
	if maxUploadMB <= 0 {
		maxUploadMB = DefaultMaxUploadMB
	}
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &AvatarStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// MaxUploadBytes возвращает допустимый размер одного файла.
func (s *AvatarStorage) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// Save записывает файл через временный и возвращает путь относительно корня.
// Расширение ext определяется вызывающим по содержимому файла.
func (s *AvatarStorage) Save(ctx context.Context, userID uuid.UUID, ext string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext = "." + strings.TrimPrefix(strings.ToLower(ext), ".")
	fileName := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)

	userDir := filepath.Join(s.rootPath, userID.String())
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return "", fmt.Errorf("storage: не удалось создать каталог пользователя: %w", err)
	}

	targetPath := filepath.Join(userDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limited := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: ошибка записи файла: %w", err)
	}
	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", ErrTooLarge
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return filepath.ToSlash(filepath.Join(userID.String(), fileName)), nil
}

func (s *AvatarStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.resolve(relativePath)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// resolve не даёт выйти за пределы корня хранилища.
func (s *AvatarStorage) resolve(relativePath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(relativePath))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: недопустимый путь %q", relativePath)
	}
	return filepath.Join(s.rootPath, clean), nil
}

// Root нужен роутеру для раздачи файлов.
func (s *AvatarStorage) Root() string {
	return s.rootPath
}
