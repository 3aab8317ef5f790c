package view

import (
	"math"

	"github.com/aanand-mishra/students-dashboard/internal/types"
)

// DepartmentCount is one bar of the department chart.
type DepartmentCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Summary is what the dashboard renders.
type Summary struct {
	Total       int `json:"total_students"`
	Active      int `json:"active_students"`
	Departments int `json:"departments"`

	// ByDepartment is the histogram as a lookup table; Chart carries the
	// same counts ordered by first appearance.
	ByDepartment map[string]int    `json:"by_department"`
	Chart        []DepartmentCount `json:"chart"`

	// AverageAttendance is the exact mean, 0 for an empty collection.
	// AttendancePercent is that mean rounded to the nearest whole percent.
	AverageAttendance float64 `json:"average_attendance"`
	AttendancePercent int     `json:"attendance_percent"`
}

// Summarize computes the dashboard statistics over records.
func Summarize(records []types.Student) Summary {
	s := Summary{
		Total:        len(records),
		ByDepartment: make(map[string]int),
		Chart:        make([]DepartmentCount, 0),
	}

	for _, r := range records {
		if r.Status == types.StatusActive {
			s.Active++
		}
		if _, ok := s.ByDepartment[r.Department]; !ok {
			s.Chart = append(s.Chart, DepartmentCount{Name: r.Department})
		}
		s.ByDepartment[r.Department]++
	}

	for i := range s.Chart {
		s.Chart[i].Value = s.ByDepartment[s.Chart[i].Name]
	}
	s.Departments = len(s.Chart)
	s.AverageAttendance = AverageAttendance(records)
	s.AttendancePercent = int(math.Round(s.AverageAttendance))
	return s
}

// AverageAttendance returns the mean attendance, or 0 when records is empty.
func AverageAttendance(records []types.Student) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.Attendance
	}
	return sum / float64(len(records))
}
