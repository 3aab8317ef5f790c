// Package storage defines the contracts between the record store and
// everything around it:
//
//   - Storage is what HTTP handlers (the read consumers) depend on. The
//     in-memory record store in storage/memory implements it.
//
//   - Source is where the initial snapshot comes from. storage/jsonfile
//     reads the static students.json file; storage/sqlite reads a table
//     from a SQLite database.
//
// Handlers never know which concrete store or source they are talking to,
// so tests can swap in fakes and main.go picks the source from config.
package storage

import (
	"context"

	"github.com/aanand-mishra/students-dashboard/internal/types"
)

// Storage is the record store contract.
type Storage interface {
	// Load fetches the initial collection from the configured Source.
	// It may be called again after a failure; see LoadStatus.
	Load(ctx context.Context) error

	// Add appends a candidate and returns the freshly assigned ID.
	// The candidate's own ID is ignored. No validation happens here.
	Add(candidate types.Student) (int64, error)

	// Update merges patch into the record with the given ID.
	Update(id int64, patch types.StudentPatch) error

	// Delete removes the record with the given ID.
	Delete(id int64) error

	// Get looks a single record up by ID.
	Get(id int64) (types.Student, bool)

	// Snapshot returns an immutable view of the whole collection.
	Snapshot() Snapshot

	// Subscribe registers a listener and returns its unsubscribe handle.
	Subscribe(listener Listener) (unsubscribe func())
}

// Source provides the initial record set. It is called once per Load.
type Source interface {
	Fetch(ctx context.Context) ([]types.Student, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context) ([]types.Student, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context) ([]types.Student, error) {
	return f(ctx)
}
