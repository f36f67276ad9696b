package e

import (
	"errors"
	"fmt"
)

var (
	// Таксономия ошибок уровня операций
	ErrUnauthenticated = fmt.Errorf("unauthenticated")
	ErrForbidden       = fmt.Errorf("forbidden")
	ErrNotFound        = fmt.Errorf("not found")
	ErrValidation      = fmt.Errorf("validation error")
	ErrConflict        = fmt.Errorf("conflict")
	ErrOutOfStock      = fmt.Errorf("out of stock")
	ErrTransientIO     = fmt.Errorf("temporary storage failure")

	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки аутентификации
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	ErrTokenRevoked       = fmt.Errorf("%w: token revoked", ErrUnauthenticated)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthenticated)

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrNoImages             = fmt.Errorf("no images provided")
	ErrFileTooLarge         = fmt.Errorf("file too large")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")

	// Конфигурация
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// ValidationError описывает отклонённое поле входных данных.
type ValidationError struct {
	Field  string
	Reason string
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), v.Field, v.Reason)
}

// Is позволяет сравнивать ValidationError с ErrValidation через errors.Is.
func (v *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// Boundary приводит ошибку к одной из ошибок таксономии на границе операции.
// Неизвестные ошибки считаются временным сбоем хранилища, исходная причина остаётся в цепочке.
func Boundary(op string, err error) error {
	if err == nil {
		return nil
	}

	if IsDomain(err) {
		return Wrap(op, err)
	}

	return fmt.Errorf("%s: %w: %w", op, ErrTransientIO, err)
}

// IsDomain сообщает, принадлежит ли ошибка таксономии операций.
func IsDomain(err error) bool {
	for _, target := range []error{
		ErrUnauthenticated,
		ErrForbidden,
		ErrNotFound,
		ErrValidation,
		ErrConflict,
		ErrOutOfStock,
		ErrTransientIO,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// AsValidation извлекает ValidationError из цепочки ошибок.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}

	return nil, false
}
