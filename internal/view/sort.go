package view

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/aanand-mishra/students-dashboard/internal/types"
)

// SortKey is a column the listing can be ordered by.
type SortKey string

const (
	SortByName     SortKey = "name"
	SortByCGPA     SortKey = "cgpa"
	SortBySemester SortKey = "semester"
)

// Direction is ascending or descending.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseSortKey maps a query value onto a SortKey. Empty means name.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(s)); k {
	case "":
		return SortByName, nil
	case SortByName, SortByCGPA, SortBySemester:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q: use name, cgpa or semester", s)
	}
}

// ParseDirection maps a query value onto a Direction. Empty means ascending.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(s)); d {
	case "":
		return Ascending, nil
	case Ascending, Descending:
		return d, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q: use asc or desc", s)
	}
}

// SortState is the listing's current ordering.
type SortState struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// DefaultSort orders by name, ascending.
var DefaultSort = SortState{Key: SortByName, Direction: Ascending}

// Toggle returns the state after the user selects key: a new key always
// starts ascending, the current key flips direction.
func (s SortState) Toggle(key SortKey) SortState {
	if key != s.Key {
		return SortState{Key: key, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return SortState{Key: key, Direction: Descending}
	}
	return SortState{Key: key, Direction: Ascending}
}

// Sort returns a sorted copy of records. The sort is stable in both
// directions: records that compare equal keep their input order. Names
// compare case-insensitively.
func Sort(records []types.Student, key SortKey, dir Direction) []types.Student {
	out := slices.Clone(records)
	if out == nil {
		out = make([]types.Student, 0)
	}

	compare := comparator(key)
	if dir == Descending {
		asc := compare
		compare = func(a, b types.Student) int { return asc(b, a) }
	}

	slices.SortStableFunc(out, compare)
	return out
}

func comparator(key SortKey) func(a, b types.Student) int {
	switch key {
	case SortByCGPA:
		return func(a, b types.Student) int { return cmp.Compare(a.CGPA, b.CGPA) }
	case SortBySemester:
		return func(a, b types.Student) int { return cmp.Compare(a.Semester, b.Semester) }
	default:
		return func(a, b types.Student) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	}
}
