// Package dashboard contains the summary handler and the load-status
// endpoints that let a client see, and retry, a failed initial load.
package dashboard

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/students-dashboard/internal/storage"
	"github.com/aanand-mishra/students-dashboard/internal/utils/response"
	"github.com/aanand-mishra/students-dashboard/internal/view"
)

// SummaryResponse is the body of GET /api/dashboard.
type SummaryResponse struct {
	Loading bool `json:"loading"`
	view.Summary
}

// StatusResponse is the body of GET /api/status and POST /api/reload.
type StatusResponse struct {
	Status  storage.LoadStatus `json:"status"`
	Records int                `json:"records"`
	Version uint64             `json:"version"`
	Error   string             `json:"error,omitempty"`
}

// Summary handles GET /api/dashboard: totals, active count, department
// count and histogram, and average attendance.
func Summary(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("building dashboard summary")

		snap := store.Snapshot()
		response.WriteJSON(w, http.StatusOK, SummaryResponse{
			Loading: snap.Loading(),
			Summary: view.Summarize(snap.Records),
		})
	}
}

// Status handles GET /api/status.
func Status(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, statusOf(store.Snapshot()))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Reload handles POST /api/reload, the retry entry point for a failed load.
//
//	200 OK        — load succeeded, body is the new status
//	409 Conflict  — already loaded, or a load is running
//	502 Bad Gateway — the source failed again; body is the failed status
//
// ─────────────────────────────────────────────────────────────────────────────
func Reload(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("reloading students")

		err := store.Load(r.Context())
		switch {
		case err == nil:
			response.WriteJSON(w, http.StatusOK, statusOf(store.Snapshot()))
		case errors.Is(err, storage.ErrAlreadyLoaded), errors.Is(err, storage.ErrLoadInProgress):
			response.WriteJSON(w, http.StatusConflict, response.GeneralError(err))
		default:
			slog.Error("reload failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusBadGateway, statusOf(store.Snapshot()))
		}
	}
}

func statusOf(snap storage.Snapshot) StatusResponse {
	resp := StatusResponse{
		Status:  snap.Status,
		Records: snap.Len(),
		Version: snap.Version,
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	return resp
}
