// Package apperr is the error taxonomy shared by the client-side workflows.
// No class here is fatal: every one of them is reported and the user may retry.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is detected locally before anything is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ComplianceError means a mandatory narcotic-log field is missing.
type ComplianceError struct {
	Missing []string
}

func (e *ComplianceError) Error() string {
	return "narcotic log incomplete: missing " + strings.Join(e.Missing, ", ")
}

// ServerRejection carries the remote service's refusal verbatim.
type ServerRejection struct {
	Status  int
	Message string
}

func (e *ServerRejection) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Message)
}

// ErrAuthExpired is returned for any 401; the session has been cleared.
var ErrAuthExpired = errors.New("authentication expired")

// NetworkFailure wraps a request that could not complete.
type NetworkFailure struct {
	Op  string
	Err error
}

func (e *NetworkFailure) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkFailure) Unwrap() error { return e.Err }

// Describe renders err as a message for the person at the screen.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var (
		ve *ValidationError
		ce *ComplianceError
		sr *ServerRejection
		nf *NetworkFailure
	)
	switch {
	case errors.As(err, &ve):
		return "Проверьте ввод: " + ve.Message
	case errors.As(err, &ce):
		return "Для наркотического средства обязательно укажите данные пациента и причину назначения."
	case errors.As(err, &sr):
		return "Сервер отклонил операцию: " + sr.Message
	case errors.Is(err, ErrAuthExpired):
		return "Сессия истекла, войдите заново: /login"
	case errors.As(err, &nf):
		return "Сервер недоступен, попробуйте ещё раз."
	default:
		return "Произошла ошибка: " + err.Error()
	}
}
