package storage

import (
	"github.com/aanand-mishra/students-dashboard/internal/types"
)

// LoadStatus tracks the initial load.
type LoadStatus int

const (
	// LoadPending: no successful load yet; either not started or in flight.
	LoadPending LoadStatus = iota
	// LoadReady: the collection has been populated from the source.
	LoadReady
	// LoadFailed: the last attempt failed. Load may be retried.
	LoadFailed
)

func (s LoadStatus) String() string {
	switch s {
	case LoadPending:
		return "pending"
	case LoadReady:
		return "ready"
	case LoadFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText lets the status appear as its name in JSON.
func (s LoadStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is the collection plus its load state at one point in time.
//
// Records is owned by the snapshot: the store hands every caller its own
// copy, so modifying it cannot reach the store.
type Snapshot struct {
	Version uint64
	Status  LoadStatus
	Err     error // last load error, set only when Status is LoadFailed
	Records []types.Student
}

// Loading reports whether the initial load has not yet succeeded.
// Both pending and failed stores count as loading.
func (s Snapshot) Loading() bool {
	return s.Status != LoadReady
}

// Len returns the number of records.
func (s Snapshot) Len() int {
	return len(s.Records)
}

// Find returns the record with the given ID.
func (s Snapshot) Find(id int64) (types.Student, bool) {
	for _, r := range s.Records {
		if r.ID == id {
			return r, true
		}
	}
	return types.Student{}, false
}

// Op names the operation that produced a snapshot.
type Op string

const (
	OpLoad   Op = "load"
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change describes one applied operation. ID is zero for OpLoad.
type Change struct {
	Op Op
	ID int64
}

// Listener receives every new snapshot synchronously, before the
// mutating call returns. Listeners must not call mutating store methods.
type Listener func(snap Snapshot, change Change)
