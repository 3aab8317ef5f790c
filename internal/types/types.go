// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, views and validation can all import types without
// depending on each other.
package types

// Status is the enrolment state of a student.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is one of the two known statuses.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Student represents a student record in our system.
//
// The ID is assigned by the record store when the student is added and
// never changes afterwards. The numeric ranges (semester 1–8, cgpa 0–4,
// attendance 0–100) are enforced by the validation package before a
// record reaches the store; the store itself trusts its caller.
//
// Image is optional. An empty string means "no image" and is omitted
// from the JSON encoding, matching the seed file shape.
type Student struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Department string  `json:"department"`
	Semester   int     `json:"semester"`
	CGPA       float64 `json:"cgpa"`
	Attendance float64 `json:"attendance"`
	Status     Status  `json:"status"`
	Image      string  `json:"image,omitempty"`
}

// StudentPatch carries a partial update. A nil field means "leave as is".
// It has no ID field because identifiers are immutable.
type StudentPatch struct {
	Name       *string
	Email      *string
	Phone      *string
	Department *string
	Semester   *int
	CGPA       *float64
	Attendance *float64
	Status     *Status
	Image      *string
}

// Empty reports whether the patch changes nothing.
func (p StudentPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil &&
		p.Department == nil && p.Semester == nil && p.CGPA == nil &&
		p.Attendance == nil && p.Status == nil && p.Image == nil
}

// Apply returns a copy of s with every supplied field of p merged in.
func (p StudentPatch) Apply(s Student) Student {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Department != nil {
		s.Department = *p.Department
	}
	if p.Semester != nil {
		s.Semester = *p.Semester
	}
	if p.CGPA != nil {
		s.CGPA = *p.CGPA
	}
	if p.Attendance != nil {
		s.Attendance = *p.Attendance
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Image != nil {
		s.Image = *p.Image
	}
	return s
}
