// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/aanand-mishra/students-dashboard/internal/validation"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a student, a listing, an id…).
// Error responses always look like:
//
//	{ "status": "error", "error": "student not found: id 7" }
//
// Validation failures additionally carry one message per failing field:
//
//	{ "status": "error", "error": "validation failed: ...",
//	  "fields": { "semester": "must be between 1 and 8" } }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string            `json:"status"`           // "ok" or "error"
	Error  string            `json:"error"`            // human-readable error detail
	Fields map[string]string `json:"fields,omitempty"` // per-field validation messages
}

// Status string constants — use these instead of raw string literals so
// a typo is caught by the compiler rather than silently sending "eroor".
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError turns per-field validation failures into a Response
// the form can render inline.
func ValidationError(errs validation.FieldErrors) Response {
	return Response{
		Status: StatusError,
		Error:  errs.Error(),
		Fields: errs,
	}
}
