// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver: enough for a reference students API.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/aanand-mishra/student-directory/internal/apperr"
	"github.com/aanand-mishra/student-directory/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB

	// newID assigns ids to new records.
	newID func() string
	now   func() time.Time
}

// New opens the SQLite database at path, creates the students table if
// it does not already exist, and returns a ready-to-use *SQLite.
func New(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	// sql.Open does NOT open a real connection yet: it just validates
	// the driver name and data source name (DSN).
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent: safe to run on every
	// startup. If the table already exists nothing happens.
	//
	// Schema:
	//   seq: insertion order, so listings are stable
	//   id: server-assigned UUID, the public key
	//   name, grp, email, avatar: profile fields ("group" is an SQL keyword)
	//   age: kept as text; clients are not consistent about its type
	//   created_at: creation timestamp (UTC)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			id         TEXT    NOT NULL UNIQUE,
			name       TEXT    NOT NULL,
			age        TEXT    NOT NULL,
			grp        TEXT    NOT NULL,
			email      TEXT    NOT NULL,
			avatar     TEXT    NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db, newID: uuid.NewString, now: time.Now}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

const selectColumns = "SELECT id, name, age, grp, email, avatar FROM students"

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner, student *types.Student) error {
	var age string
	if err := row.Scan(
		&student.ID,
		&student.Name,
		&age,
		&student.Group,
		&student.Email,
		&student.Avatar,
	); err != nil {
		return err
	}
	student.Age = types.Age(age)
	return nil
}

// CreateStudent inserts a new row with a fresh id and returns it.
// Placeholders (?) keep user input out of the SQL text.
func (s *SQLite) CreateStudent(ctx context.Context, student types.Student) (types.Student, error) {
	student.ID = s.newID()

	_, err := s.Db.ExecContext(ctx,
		"INSERT INTO students (id, name, age, grp, email, avatar, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		student.ID, student.Name, student.Age.String(), student.Group, student.Email, student.Avatar, s.now().UTC(),
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: exec: %w", err)
	}

	return student, nil
}

// GetStudentByID fetches exactly one student row matched by id.
func (s *SQLite) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	var student types.Student

	// QueryRowContext returns exactly one row. If the query finds no match
	// the error surfaces only when we call Scan.
	err := scanStudent(s.Db.QueryRowContext(ctx, selectColumns+" WHERE id = ? LIMIT 1", id), &student)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, fmt.Errorf("no student found with id %s: %w", id, apperr.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return student, nil
}

// GetStudents returns all student rows in insertion order.
func (s *SQLite) GetStudents(ctx context.Context) ([]types.Student, error) {
	rows, err := s.Db.QueryContext(ctx, selectColumns+" ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close() // must close rows to free the DB connection

	// Returning [] instead of null in JSON is better API behaviour.
	students := make([]types.Student, 0)

	for rows.Next() {
		var student types.Student
		if err := scanStudent(rows, &student); err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}
		students = append(students, student)
	}

	// rows.Err() captures any error that occurred during iteration.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

// UpdateStudentByID replaces a student's data with the provided values
// and returns the stored record.
func (s *SQLite) UpdateStudentByID(ctx context.Context, id string, student types.Student) (types.Student, error) {
	res, err := s.Db.ExecContext(ctx,
		"UPDATE students SET name = ?, age = ?, grp = ?, email = ?, avatar = ? WHERE id = ?",
		student.Name, student.Age.String(), student.Group, student.Email, student.Avatar, id,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: exec: %w", err)
	}
	if err := requireAffected(res, id); err != nil {
		return types.Student{}, err
	}

	// Re-fetch the record so we return exactly what is stored in the DB.
	return s.GetStudentByID(ctx, id)
}

// DeleteStudentByID removes a student row by id.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id string) error {
	res, err := s.Db.ExecContext(ctx, "DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no student found with id %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}
