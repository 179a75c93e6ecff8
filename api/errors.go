package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when handling a request for an item that
	// does not exist.
	ErrNotFound = errors.New("item not found")
	// ErrMethodNotAllowed is returned for anything but GET requests.
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// HumanReadableError is the body of every error response.
type HumanReadableError struct {
	Msg string `json:"msg"`
}

func HttpCodeForError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// A simple error handler that renders any error as human-readable JSON to
// the HTTP response stream `w`.
func HumanReadableJsonErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("x-content-type-options", "nosniff")
	w.WriteHeader(HttpCodeForError(err))

	// Wrap the error into a trivial JSON object.
	msg := err.Error()
	errStruct := HumanReadableError{Msg: msg}

	_ = json.NewEncoder(w).Encode(errStruct)
}
