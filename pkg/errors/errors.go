package errors

import (
	"errors"
	"fmt"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader   = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader = fmt.Errorf("неверный формат заголовка авторизации")
	ErrUnauthorized      = fmt.Errorf("неавторизован")
	ErrPermissionDenied  = fmt.Errorf("доступ запрещён")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")

	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")
)

// ValidationError - некорректные входные данные (нет обязательной ссылки на каталог,
// нет кода акта при выдаче сотруднику и т.п.).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError - перемещение недостижимо из текущего состояния единицы.
type InvalidTransitionError struct {
	From    string
	To      string
	Message string
}

func (e *InvalidTransitionError) Error() string {
	if e.From == "" && e.To == "" {
		return e.Message
	}
	return fmt.Sprintf("переход %s -> %s недопустим: %s", e.From, e.To, e.Message)
}

func NewInvalidTransitionError(from, to, format string, args ...interface{}) error {
	return &InvalidTransitionError{From: from, To: to, Message: fmt.Sprintf(format, args...)}
}

// ConflictError - нарушение правила "не более одного открытого перемещения" или
// обнаружено параллельное изменение.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func NewConflictError(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError - операция журнала над перемещением в неподходящем статусе.
type InvalidStateError struct {
	Status  string
	Message string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s (текущий статус: %s)", e.Message, e.Status)
}

func NewInvalidStateError(status, format string, args ...interface{}) error {
	return &InvalidStateError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// HttpError - ошибка, готовая к отдаче клиенту.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

// Code возвращает машинный код ошибки для результатов пакетной операции.
func Code(err error) string {
	var (
		validationErr *ValidationError
		transitionErr *InvalidTransitionError
		conflictErr   *ConflictError
		stateErr      *InvalidStateError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrPermissionDenied):
		return "PERMISSION_DENIED"
	case errors.As(err, &validationErr):
		return "VALIDATION_ERROR"
	case errors.As(err, &transitionErr):
		return "INVALID_TRANSITION"
	case errors.As(err, &conflictErr):
		return "CONFLICT"
	case errors.As(err, &stateErr):
		return "INVALID_STATE"
	default:
		return "INTERNAL"
	}
}
