package router

import (
	"net/http"

	"github.com/aanand-mishra/students-dashboard/internal/http/handlers/dashboard"
	"github.com/aanand-mishra/students-dashboard/internal/http/handlers/student"
	"github.com/aanand-mishra/students-dashboard/internal/storage"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	Store storage.Storage
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler
}

// New builds the ServeMux with every route of the dashboard.
//
// Route table:
//
//	GET    /api/students        → filtered + sorted listing with facets
//	POST   /api/students        → validate and create a student
//	GET    /api/students/{id}   → one student
//	PATCH  /api/students/{id}   → partial update
//	DELETE /api/students/{id}   → delete
//	GET    /api/dashboard       → summary statistics
//	GET    /api/status          → load status
//	POST   /api/reload          → retry a failed load
//	GET    /metrics             → Prometheus exposition
func New(deps Dependencies) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /api/students", student.GetList(deps.Store))
	router.HandleFunc("POST /api/students", student.New(deps.Store))
	router.HandleFunc("GET /api/students/{id}", student.GetByID(deps.Store))
	router.HandleFunc("PATCH /api/students/{id}", student.Update(deps.Store))
	router.HandleFunc("DELETE /api/students/{id}", student.Delete(deps.Store))

	router.HandleFunc("GET /api/dashboard", dashboard.Summary(deps.Store))
	router.HandleFunc("GET /api/status", dashboard.Status(deps.Store))
	router.HandleFunc("POST /api/reload", dashboard.Reload(deps.Store))

	if deps.Metrics != nil {
		router.Handle("GET /metrics", deps.Metrics)
	}

	return router
}
