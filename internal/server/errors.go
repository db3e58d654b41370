package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/diriredouane/AI-Recipe-Automator/internal/sheets"
)

// BadRequestError is a malformed or unrecognized callback payload.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

// LockTimeoutError means the callback write lock could not be acquired.
type LockTimeoutError struct {
	Err error
}

func (e *LockTimeoutError) Error() string { return e.Err.Error() }

func (e *LockTimeoutError) Unwrap() error { return e.Err }

// UnauthorizedError is a missing or invalid bearer token.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// writeError maps error types onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var (
		badRequest   *BadRequestError
		lockTimeout  *LockTimeoutError
		unauthorized *UnauthorizedError
		notFound     *sheets.NotFoundError
	)
	switch {
	case errors.As(err, &badRequest):
		status = http.StatusBadRequest
	case errors.As(err, &unauthorized):
		status = http.StatusUnauthorized
	case errors.As(err, &lockTimeout):
		status = http.StatusServiceUnavailable
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	}

	writeJSON(w, status, map[string]string{
		"status": "error",
		"error":  fmt.Sprint(err),
	})
}
