package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-directory/internal/apperr"
	"github.com/aanand-mishra/student-directory/internal/types"
)

func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "nested", "students.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleStudent(name string) types.Student {
	return types.Student{
		Name:   name,
		Age:    "21",
		Group:  "A1",
		Email:  name + "@example.com",
		Avatar: "https://example.com/" + name + ".png",
	}
}

func TestCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := db.CreateStudent(ctx, sampleStudent("rakesh"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := db.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, 21, got.Age.Int())
}

func TestCreate_AssignsDistinctIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a, err := db.CreateStudent(ctx, sampleStudent("a"))
	require.NoError(t, err)
	b, err := db.CreateStudent(ctx, sampleStudent("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestGetStudents_InsertionOrderAndEmpty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	empty, err := db.GetStudents(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, n := range []string{"zoe", "adam", "mia"} {
		_, err := db.CreateStudent(ctx, sampleStudent(n))
		require.NoError(t, err)
	}
	all, err := db.GetStudents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "zoe", all[0].Name)
	assert.Equal(t, "mia", all[2].Name)
}

func TestUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := db.CreateStudent(ctx, sampleStudent("old"))
	require.NoError(t, err)

	changed := sampleStudent("new")
	changed.Age = "30"
	changed.Avatar = ""
	updated, err := db.UpdateStudentByID(ctx, created.ID, changed)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "new", updated.Name)
	assert.Equal(t, types.Age("30"), updated.Age)
	assert.Empty(t, updated.Avatar)
}

func TestUpdateAndDelete_UnknownID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.UpdateStudentByID(ctx, "missing", sampleStudent("x"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = db.DeleteStudentByID(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = db.GetStudentByID(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := db.CreateStudent(ctx, sampleStudent("gone"))
	require.NoError(t, err)
	require.NoError(t, db.DeleteStudentByID(ctx, created.ID))

	_, err = db.GetStudentByID(ctx, created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
