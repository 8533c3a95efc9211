package validation

import (
	"unicode"
)

const MinPasswordLength = 8

// ValidatePassword проверяет пароль на соответствие требованиям безопасности.
// Требования:
// - Минимум 8 символов
// - Должен содержать заглавные буквы
// - Должен содержать строчные буквы
// - Должен содержать цифры
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return invalid("password must be at least %d characters", MinPasswordLength)
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return invalid("password must contain an uppercase letter")
	}
	if !hasLower {
		return invalid("password must contain a lowercase letter")
	}
	if !hasNumber {
		return invalid("password must contain a digit")
	}

	return nil
}
