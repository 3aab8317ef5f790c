// Package view computes everything the list and dashboard consumers show
// from a snapshot of the store: filtered and sorted listings, department
// facets and summary statistics.
//
// Every function here is pure. Inputs are never modified, there is no
// hidden state and no caching; calling the same function twice with the
// same arguments gives the same answer. Collections are small, so the
// consumers simply recompute on every request.
package view

import (
	"strings"

	"github.com/aanand-mishra/students-dashboard/internal/types"
)

// Query holds the listing's filter selections. Zero values match all.
type Query struct {
	// Search is matched case-insensitively as a substring of the name.
	Search string
	// Department must equal the record's department exactly.
	Department string
}

// Filter returns the records matching both the search text and the
// department, in input order. The result is a new slice.
func Filter(records []types.Student, q Query) []types.Student {
	needle := strings.ToLower(q.Search)
	out := make([]types.Student, 0, len(records))
	for _, r := range records {
		if needle != "" && !strings.Contains(strings.ToLower(r.Name), needle) {
			continue
		}
		if q.Department != "" && r.Department != q.Department {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Departments returns the distinct department values in the order they
// first appear. It is computed from the full, unfiltered collection so the
// filter choices never disappear because of the current selection.
func Departments(records []types.Student) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.Department]; ok {
			continue
		}
		seen[r.Department] = struct{}{}
		out = append(out, r.Department)
	}
	return out
}

// Listing is what the list consumer renders.
type Listing struct {
	Students    []types.Student `json:"students"`
	Departments []string        `json:"departments"`
	Sort        SortState       `json:"sort"`
}

// List filters records with q, sorts the result by state and attaches the
// department facets of the unfiltered collection.
func List(records []types.Student, q Query, state SortState) Listing {
	return Listing{
		Students:    Sort(Filter(records, q), state.Key, state.Direction),
		Departments: Departments(records),
		Sort:        state,
	}
}
