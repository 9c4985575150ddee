package main

import (
	"bytes"
	"context"
	"io"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-directory/internal/config"
	"github.com/aanand-mishra/student-directory/internal/server"
	"github.com/aanand-mishra/student-directory/internal/storage/sqlite"
)

// testConfig starts a students API and writes a config file pointing the
// client at it.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	db, err := sqlite.New(filepath.Join(dir, "students.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	srv := httptest.NewServer(server.NewHandler(db, config.HTTPServer{MaxBodyBytes: 2 << 20}))
	t.Cleanup(srv.Close)

	path := filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf(`env: dev
storage_path: %s
client:
  api_url: %s/api/students
  page_size: 2
  log_file: %s
`, filepath.Join(dir, "unused.db"), srv.URL, filepath.Join(dir, "studentdir.log"))
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root, a := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = run(context.Background(), root, a)
	return out.String(), errOut.String(), err
}

var idPattern = regexp.MustCompile(`\(id ([^)]+)\)`)

func add(t *testing.T, cfg, name, age, group string) string {
	t.Helper()
	out, stderr, err := execute(t, "--config", cfg, "add",
		"--name", name, "--age", age, "--group", group,
		"--email", strings.ToLower(name)+"@example.com")
	require.NoError(t, err, stderr)
	m := idPattern.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	return m[1]
}

func TestAddListExportDelete(t *testing.T) {
	cfg := testConfig(t)

	janeID := add(t, cfg, "Jane", "22", "B2")
	add(t, cfg, "Adam", "30", "A1")
	add(t, cfg, "Zoe", "19", "B2")

	out, _, err := execute(t, "--config", cfg, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Adam")
	assert.Contains(t, out, "Jane")
	assert.NotContains(t, out, "Zoe", "page size is 2")
	assert.Contains(t, out, "Page 1/2 (3 students)")

	out, _, err = execute(t, "--config", cfg, "list", "--sort", "age", "--desc", "--group", "B2")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Jane"), strings.Index(out, "Zoe"))
	assert.NotContains(t, out, "Adam")

	out, _, err = execute(t, "--config", cfg, "export", "--out", "-", "--search", "a")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Age,Group,Email,Avatar", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `"Adam","30","A1","adam@example.com","https://picsum.photos/seed/`))

	out, _, err = execute(t, "--config", cfg, "delete", janeID)
	require.NoError(t, err)
	assert.Contains(t, out, "Student deleted successfully!")

	out, _, err = execute(t, "--config", cfg, "list", "--search", "jane")
	require.NoError(t, err)
	assert.Contains(t, out, "No students found.")
}

func TestAdd_InvalidDraft(t *testing.T) {
	cfg := testConfig(t)

	_, stderr, err := execute(t, "--config", cfg, "add",
		"--name", "Al", "--age", "15", "--group", "A", "--email", "bad")
	require.Error(t, err)
	assert.Contains(t, stderr, "age: Age must be between 16 and 100")
	assert.Contains(t, stderr, "email: Email is invalid")
	assert.NotContains(t, stderr, "name:")

	out, _, err := execute(t, "--config", cfg, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No students found.")
}

func TestAdd_WithRejectedImage(t *testing.T) {
	cfg := testConfig(t)
	img := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(img, []byte("plain text"), 0o644))

	_, _, err := execute(t, "--config", cfg, "add",
		"--name", "Jane", "--age", "22", "--group", "B2", "--email", "jane@example.com",
		"--image", img)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please upload a valid image file")
}

func TestList_UnknownSortField(t *testing.T) {
	cfg := testConfig(t)
	_, _, err := execute(t, "--config", cfg, "list", "--sort", "height")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown sort field "height"`)
}

func TestDelete_UnknownID(t *testing.T) {
	cfg := testConfig(t)
	_, _, err := execute(t, "--config", cfg, "delete", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to delete student")
}

func TestFailedCommandClosesLogFile(t *testing.T) {
	cfg := testConfig(t)
	root, a := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", cfg, "delete", "missing"})

	require.Error(t, run(context.Background(), root, a))
	assert.Nil(t, a.logFile)
}

func TestAvatarText(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("é", 30)
	got := avatarText(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "https://example.com/"+strings.Repeat("é", 17)+"...", got)

	assert.Equal(t, "https://example.com/é.png", avatarText("https://example.com/é.png"))
	assert.Equal(t, "(placeholder)", avatarText(""))
	assert.Equal(t, "(Uploaded Image)", avatarText("data:image/png;base64,AAAA"))
}
