// Package sqlite provides a SQLite-backed storage.Source: the initial
// student snapshot is read from a "students" table instead of a JSON file.
//
// The store never writes back. SQLite is only where the seed lives, which
// makes it easy to hand the dashboard an export from another system.
//
// The blank import below registers the sqlite3 driver with database/sql.
// The driver's init() function does this automatically when the package
// is loaded — we never call anything from it directly.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aanand-mishra/students-dashboard/internal/storage"
	"github.com/aanand-mishra/students-dashboard/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete storage.Source.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db *sql.DB
}

var _ storage.Source = (*SQLite)(nil)

// New opens the SQLite database at path and creates the students table if
// it does not already exist, so an empty database loads as an empty
// collection rather than failing.
func New(path string) (*SQLite, error) {
	// sql.Open does NOT open a real connection yet — it just validates
	// the driver name and data source name (DSN).
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe to run on every
	// startup. Column names match the JSON field names of types.Student.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT    NOT NULL,
			email      TEXT    NOT NULL,
			phone      TEXT    NOT NULL,
			department TEXT    NOT NULL,
			semester   INTEGER NOT NULL,
			cgpa       REAL    NOT NULL,
			attendance REAL    NOT NULL,
			status     TEXT    NOT NULL DEFAULT 'active',
			image      TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Fetch returns every row of the students table as a slice.
//
// HOW QueryContext + rows.Next() WORK:
// ─────────────────────────────────────
// QueryContext returns *sql.Rows — a cursor over multiple rows — and
// aborts the query if ctx is cancelled. We iterate with rows.Next() and
// Scan each row inside the loop. Always defer rows.Close() to release the
// database connection.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Fetch(ctx context.Context) ([]types.Student, error) {
	rows, err := s.Db.QueryContext(ctx,
		// Explicitly list columns — if a column is added later,
		// SELECT * would break Scan's ordering.
		`SELECT id, name, email, phone, department, semester, cgpa, attendance, status, image
		 FROM students ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Fetch: query: %w", err)
	}
	defer rows.Close()

	// Returning [] instead of null keeps the store's collection non-nil.
	students := make([]types.Student, 0)

	for rows.Next() {
		var (
			student types.Student
			status  string
			image   sql.NullString // image is optional, so the column may be NULL
		)

		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Email,
			&student.Phone,
			&student.Department,
			&student.Semester,
			&student.CGPA,
			&student.Attendance,
			&status,
			&image,
		); err != nil {
			return nil, fmt.Errorf("sqlite.Fetch: scan row: %w", err)
		}

		student.Status = types.Status(status)
		student.Image = image.String
		students = append(students, student)
	}

	// rows.Err() captures any error that occurred during iteration.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite.Fetch: rows iteration: %w", err)
	}

	return students, nil
}

// Insert writes one student row, keeping its ID when it is non-zero.
// It exists for seeding a database file; the running dashboard never calls it.
func (s *SQLite) Insert(ctx context.Context, student types.Student) (int64, error) {
	var id any
	if student.ID != 0 {
		id = student.ID
	}
	var image any
	if student.Image != "" {
		image = student.Image
	}

	result, err := s.Db.ExecContext(ctx,
		`INSERT INTO students (id, name, email, phone, department, semester, cgpa, attendance, status, image)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, student.Name, student.Email, student.Phone, student.Department,
		student.Semester, student.CGPA, student.Attendance, string(student.Status), image,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite.Insert: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite.Insert: last insert id: %w", err)
	}
	return lastID, nil
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}
