package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")
)

// NotFoundError - ссылка на отсутствующую сущность (оборудование, команда, заявка, техник).
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// Is позволяет проверять через errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NewNotFoundError(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// InvalidInputError - нарушение бизнес-правила: пустое обязательное поле,
// недопустимый переход статуса, техник не в команде.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// UnavailableError - хранилище не ответило вовремя или недоступно.
// Отличается от ошибок валидации: повторять запрос имеет смысл.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	sb.WriteString(" failed: database is unreachable.\n")
	sb.WriteString("- If you're using a local database: make sure it is running and reachable (STORE_DRIVER, MONGO_URI / DATABASE_URL).\n")
	sb.WriteString("- If you're using a hosted database: check the connection settings and credentials in .env.")
	return sb.String()
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func NewUnavailableError(op string, err error) error {
	return &UnavailableError{Op: op, Err: err}
}

// HttpError - ошибка, готовая к отдаче клиенту.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

func IsUnavailable(err error) bool {
	var target *UnavailableError
	return errors.As(err, &target)
}
