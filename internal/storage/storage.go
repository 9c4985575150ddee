// Package storage defines the Storage interface: a contract that any
// database backend must satisfy to serve the students API.
//
// Handlers (HTTP layer) should not know or care which database they are
// talking to. By depending only on this interface, switching databases
// means implementing it for the new DB and changing one line in main.go,
// and tests can pass a fake that satisfies it.
package storage

import (
	"context"

	"github.com/aanand-mishra/student-directory/internal/types"
)

// Storage is the database contract.
// Every method takes a context so a cancelled request stops its query.
// Lookups by an unknown id return an error matching apperr.ErrNotFound.
type Storage interface {
	// CreateStudent inserts a new student record, assigning its ID, and
	// returns the stored record.
	CreateStudent(ctx context.Context, student types.Student) (types.Student, error)

	// GetStudentByID fetches a single student by id.
	GetStudentByID(ctx context.Context, id string) (types.Student, error)

	// GetStudents returns every student in insertion order.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// UpdateStudentByID replaces the fields of an existing student.
	// Returns the updated student record.
	UpdateStudentByID(ctx context.Context, id string, student types.Student) (types.Student, error)

	// DeleteStudentByID removes a student record permanently.
	DeleteStudentByID(ctx context.Context, id string) error
}
