// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in the students API sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
//
// Consistent response shapes also make life easier for API consumers:
// the directory client reads the "error" key of any failed response to
// show the server's own message.
package response

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a student, a list…).
// Error responses always look like:
//
//	{ "status": "error", "error": "field name is required" }
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Error  string `json:"error"`  // human-readable error detail
}

// Status string constants: use these instead of raw string literals so
// a typo is caught by the compiler rather than silently sending "eroor".
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// Message wraps a plain message into our standard Response shape.
func Message(msg string) Response {
	return Response{Status: StatusError, Error: msg}
}

// ValidationError converts the validator's per-field errors into a single
// Response. Fields are named by their JSON key, in struct order.
//
//	{ "status": "error", "error": "field name is required, field age is required" }
func ValidationError(errs validator.ValidationErrors) Response {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		field := strings.ToLower(e.Field())
		if e.ActualTag() == "required" {
			msgs = append(msgs, fmt.Sprintf("field %s is required", field))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("field %s is invalid (%s)", field, e.ActualTag()))
	}
	return Message(strings.Join(msgs, ", "))
}
