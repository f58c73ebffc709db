package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidPayload ответ сервера не прошёл проверку схемы
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrNoSession /auth/me вернул пустой ответ
	ErrNoSession = errors.New("no active session")
)

// APIError ответ сервера вне диапазона 2xx
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool { return statusOf(err) == http.StatusNotFound }

func IsUnauthorized(err error) bool {
	s := statusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}
