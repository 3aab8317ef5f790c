// Package validation is the boundary check that runs before a record
// reaches the store. The store trusts its caller, so anything that comes
// from a user (the HTTP create and update handlers) goes through here first.
//
// Rules are written as go-playground/validator struct tags. Two custom
// tags are registered on top of the built-in ones:
//
//	notblank      — string is non-empty after trimming whitespace
//	simple_email  — string looks like local@domain.tld
//
// Failures are reported per field, keyed by the JSON field name, so the
// caller can show an inline message next to each form field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/students-dashboard/internal/types"
)

// emailPattern is intentionally loose: something, @, something, dot, something.
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON name ("cgpa") rather than the Go name ("CGPA").
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	must(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	}))

	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateInput is the body of a creation request.
//
// Numeric fields are pointers so that "missing" and "zero" can be told
// apart: a cgpa of 0 is valid, an absent cgpa is not.
// ─────────────────────────────────────────────────────────────────────────────
type CreateInput struct {
	Name       string       `json:"name"       validate:"notblank"`
	Email      string       `json:"email"      validate:"notblank,simple_email"`
	Phone      string       `json:"phone"      validate:"notblank"`
	Department string       `json:"department" validate:"notblank"`
	Semester   *int         `json:"semester"   validate:"required,gte=1,lte=8"`
	CGPA       *float64     `json:"cgpa"       validate:"required,gte=0,lte=4"`
	Attendance *float64     `json:"attendance" validate:"required,gte=0,lte=100"`
	Status     types.Status `json:"status"     validate:"omitempty,oneof=active inactive"`
	Image      string       `json:"image"`
}

// Candidate validates in and converts it into a record ready for
// storage.Storage.Add. Text fields are trimmed; status defaults to active.
func (in CreateInput) Candidate() (types.Student, error) {
	if err := check(in); err != nil {
		return types.Student{}, err
	}

	status := in.Status
	if status == "" {
		status = types.StatusActive
	}

	return types.Student{
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Department: strings.TrimSpace(in.Department),
		Semester:   *in.Semester,
		CGPA:       *in.CGPA,
		Attendance: *in.Attendance,
		Status:     status,
		Image:      strings.TrimSpace(in.Image),
	}, nil
}

// UpdateInput is the body of a partial update. Only supplied fields are
// checked, with the same rules as creation.
type UpdateInput struct {
	Name       *string       `json:"name"       validate:"omitempty,notblank"`
	Email      *string       `json:"email"      validate:"omitempty,notblank,simple_email"`
	Phone      *string       `json:"phone"      validate:"omitempty,notblank"`
	Department *string       `json:"department" validate:"omitempty,notblank"`
	Semester   *int          `json:"semester"   validate:"omitempty,gte=1,lte=8"`
	CGPA       *float64      `json:"cgpa"       validate:"omitempty,gte=0,lte=4"`
	Attendance *float64      `json:"attendance" validate:"omitempty,gte=0,lte=100"`
	Status     *types.Status `json:"status"     validate:"omitempty,oneof=active inactive"`
	Image      *string       `json:"image"`
}

// Patch validates in and converts it into a types.StudentPatch.
func (in UpdateInput) Patch() (types.StudentPatch, error) {
	if err := check(in); err != nil {
		return types.StudentPatch{}, err
	}
	return types.StudentPatch{
		Name:       trimmed(in.Name),
		Email:      trimmed(in.Email),
		Phone:      trimmed(in.Phone),
		Department: trimmed(in.Department),
		Semester:   in.Semester,
		CGPA:       in.CGPA,
		Attendance: in.Attendance,
		Status:     in.Status,
		Image:      trimmed(in.Image),
	}, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// ─────────────────────────────────────────────────────────────────────────────
// FieldErrors maps a JSON field name to a human-readable message.
// It implements error so it can travel through normal error returns;
// use errors.As to get the per-field detail back.
// ─────────────────────────────────────────────────────────────────────────────
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f, fe[f]))
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

// AsFieldErrors extracts FieldErrors from err.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation: %w", err)
	}

	fe := make(FieldErrors, len(verrs))
	for _, e := range verrs {
		if _, seen := fe[e.Field()]; seen {
			continue
		}
		fe[e.Field()] = message(e)
	}
	return fe
}

// message turns a single validator failure into the text shown next to
// the form field.
func message(e validator.FieldError) string {
	switch e.Field() {
	case "semester":
		if e.Tag() != "required" {
			return "must be between 1 and 8"
		}
	case "cgpa":
		if e.Tag() != "required" {
			return "must be between 0 and 4"
		}
	case "attendance":
		if e.Tag() != "required" {
			return "must be between 0 and 100"
		}
	}

	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "simple_email":
		return "is invalid"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}
