package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

const (
	MaxEmailLength = 254
	MaxNameLength  = 100
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
)

func invalid(format string, args ...any) error {
	return apperror.New(apperror.ErrCodeValidation, fmt.Sprintf(format, args...))
}

// ValidateLength проверяет длину строки в символах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return invalid("%s must be at least %d characters", fieldName, min)
	}
	if max > 0 && length > max {
		return invalid("%s must not exceed %d characters", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return invalid("email is required")
	}
	if len(email) > MaxEmailLength {
		return invalid("email is too long")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return invalid("email format is invalid")
	}

	localPart, domainPart := parts[0], parts[1]
	if len(localPart) == 0 || len(localPart) > 64 {
		return invalid("email format is invalid")
	}
	if !emailLocalRegex.MatchString(localPart) || !emailDomainRegex.MatchString(domainPart) {
		return invalid("email format is invalid")
	}

	return nil
}

// ValidateName проверяет отображаемое имя; пустое имя допустимо.
func ValidateName(name string) error {
	return ValidateLength("name", strings.TrimSpace(name), 0, MaxNameLength)
}
