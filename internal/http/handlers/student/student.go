// Package student contains the HTTP handlers for the Student resource:
// the listing, the detail view, the creation form and the per-record
// update/delete actions.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Each exported function takes its dependencies (the store) and returns
// the http.HandlerFunc the router needs:
//
//	router.HandleFunc("POST /api/students", student.New(store))
//
// New(store) runs ONCE at startup; the returned func runs on EVERY request.
//
// Handlers never mutate records themselves. Reads go through a store
// snapshot and the view package; writes go through the store's Add,
// Update and Delete.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/students-dashboard/internal/storage"
	"github.com/aanand-mishra/students-dashboard/internal/utils/response"
	"github.com/aanand-mishra/students-dashboard/internal/validation"
	"github.com/aanand-mishra/students-dashboard/internal/view"
)

// ListResponse is the body of GET /api/students.
type ListResponse struct {
	Loading bool `json:"loading"`
	view.Listing
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
// Validates the creation form and adds the student to the store.
//
// Request body (JSON):
//
//	{ "name": "Alice", "email": "alice@uni.edu", "phone": "555-0100",
//	  "department": "CS", "semester": 2, "cgpa": 3.8, "attendance": 90 }
//
// Success response (201 Created):
//
//	{ "id": 11 }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or failed validation
//	500 Internal     — store error
//
// Validation happens BEFORE the store is touched. The store does not
// re-check anything, so this is the only gate between user input and the
// collection.
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var input validation.CreateInput
		if !decode(w, r, &input) {
			return
		}

		candidate, err := input.Candidate()
		if err != nil {
			writeValidation(w, err)
			return
		}

		id, err := store.Add(candidate)
		if err != nil {
			slog.Error("error adding student", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		slog.Info("student created", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusCreated, map[string]int64{"id": id})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
// Looks a single student up in the current snapshot.
//
// Error responses:
//
//	400 Bad Request  — id is not a valid integer
//	404 Not Found    — no student has that id
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a student", slog.Int64("id", id))

		student, found := store.Get(id)
		if !found {
			response.WriteJSON(w, http.StatusNotFound,
				response.GeneralError(storage.ErrNotFound))
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
// Returns the filtered and sorted listing plus the department facets.
//
// Query parameters (all optional):
//
//	search      case-insensitive substring of the name
//	department  exact department
//	sort        name | cgpa | semester           (default name)
//	order       asc | desc                       (default asc)
//	toggle      a column the user just clicked; applied to sort/order with
//	            the usual rule: same column flips, new column starts asc
//
// Success response (200 OK):
//
//	{ "loading": false,
//	  "students": [ ... ],
//	  "departments": ["CS", "EE"],
//	  "sort": { "key": "cgpa", "direction": "asc" } }
//
// While the initial load has not succeeded, "loading" is true and the
// listing reflects the (normally empty) collection.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("listing students")

		q := r.URL.Query()

		state, err := sortState(q.Get("sort"), q.Get("order"), q.Get("toggle"))
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		snap := store.Snapshot()
		listing := view.List(snap.Records, view.Query{
			Search:     q.Get("search"),
			Department: q.Get("department"),
		}, state)

		response.WriteJSON(w, http.StatusOK, ListResponse{
			Loading: snap.Loading(),
			Listing: listing,
		})
	}
}

func sortState(sortParam, orderParam, toggleParam string) (view.SortState, error) {
	key, err := view.ParseSortKey(sortParam)
	if err != nil {
		return view.SortState{}, err
	}
	dir, err := view.ParseDirection(orderParam)
	if err != nil {
		return view.SortState{}, err
	}
	state := view.SortState{Key: key, Direction: dir}

	if toggleParam != "" {
		clicked, err := view.ParseSortKey(toggleParam)
		if err != nil {
			return view.SortState{}, err
		}
		state = state.Toggle(clicked)
	}
	return state, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PATCH /api/students/{id}
// Changes only the fields present in the body.
//
// Request body (JSON), any subset of the creation fields:
//
//	{ "status": "inactive", "cgpa": 3.1 }
//
// Success response (200 OK) — the updated student.
//
// If no student has the id, the update is a silent no-op and the reply is
// { "status": "ok" }. With the store in strict mode it is a 404 instead.
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a student", slog.Int64("id", id))

		var input validation.UpdateInput
		if !decode(w, r, &input) {
			return
		}

		patch, err := input.Patch()
		if err != nil {
			writeValidation(w, err)
			return
		}

		if err := store.Update(id, patch); err != nil {
			writeStoreError(w, "error updating student", id, err)
			return
		}

		updated, found := store.Get(id)
		if !found {
			response.WriteJSON(w, http.StatusOK, response.Response{Status: response.StatusOK})
			return
		}

		slog.Info("student updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
//
// Success response (200 OK):
//
//	{ "status": "deleted" }
//
// Deleting an unknown id succeeds silently unless the store is strict.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a student", slog.Int64("id", id))

		if err := store.Delete(id); err != nil {
			writeStoreError(w, "error deleting student", id, err)
			return
		}

		slog.Info("student deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// pathID parses the {id} path segment. On failure it writes a 400 and
// returns false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return id, true
}

// decode reads the JSON body into dst. On failure it writes a 400 and
// returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}
	return true
}

func writeValidation(w http.ResponseWriter, err error) {
	if fields, ok := validation.AsFieldErrors(err); ok {
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(fields))
		return
	}
	response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
}

func writeStoreError(w http.ResponseWriter, msg string, id int64, err error) {
	if storage.IsNotFound(err) {
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
		return
	}
	slog.Error(msg, slog.Int64("id", id), slog.String("error", err.Error()))
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}
