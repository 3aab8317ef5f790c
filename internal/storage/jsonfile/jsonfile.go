// Package jsonfile reads the initial student snapshot from a static JSON
// file: an array of objects in the same shape types.Student encodes to.
//
//	[
//	  { "id": 1, "name": "Aarav Sharma", "email": "aarav@uni.edu", ... },
//	  ...
//	]
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aanand-mishra/students-dashboard/internal/storage"
	"github.com/aanand-mishra/students-dashboard/internal/types"
)

// Source is a storage.Source backed by a file on disk.
type Source struct {
	Path string
}

var _ storage.Source = (*Source)(nil)

// New returns a Source reading path.
func New(path string) *Source {
	return &Source{Path: path}
}

// Fetch reads and decodes the whole file. A file that is not a JSON
// array of students fails with storage.ErrMalformed.
func (s *Source) Fetch(ctx context.Context) ([]types.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("jsonfile.Fetch: %w", err)
	}

	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("jsonfile.Fetch: read %s: %w", s.Path, err)
	}

	return Decode(raw)
}

// Decode parses a JSON array of students.
func Decode(raw []byte) ([]types.Student, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", storage.ErrMalformed)
	}

	students := make([]types.Student, 0)
	if err := json.Unmarshal(raw, &students); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrMalformed, err)
	}
	return students, nil
}
