// Package student contains all HTTP handlers related to the Student resource.
//
// Handlers are built by factory functions that accept their dependencies
// and return an http.HandlerFunc closing over them:
//
//	r.Post("/students", student.New(storage, limits))
//	//                  ^^^^^^^^^^^^^^^^^^^^^^^^^^^^^
//	//                  called ONCE at startup; the returned func runs
//	//                  on EVERY incoming request.
//
// The API mirrors what hosted mock stores offer: string ids assigned by
// the server, full records echoed back on create and update, and only
// presence checks on the fields. Format rules belong to the client.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-directory/internal/apperr"
	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/types"
	"github.com/aanand-mishra/student-directory/internal/utils/response"
)

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves every request.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Limits bounds what a request may carry.
type Limits struct {
	// MaxBodyBytes is the largest accepted request body; larger bodies
	// are answered with 413.
	MaxBodyBytes int64
}

// New handles POST /api/students
// Creates a new student from the JSON request body.
//
// Request body (JSON):
//
//	{ "name": "Rakesh", "age": 21, "group": "A1", "email": "rakesh@test.com", "avatar": "" }
//
// Success response (201 Created): the stored student, with its new "id".
//
// Error responses:
//
//	400 Bad Request: empty body, malformed JSON, or missing fields
//	413 Request Entity Too Large
//	415 Unsupported Media Type: body is not JSON
//	500 Internal: database error
func New(storage storage.Storage, limits Limits) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		student, ok := decodeStudent(w, r, limits)
		if !ok {
			return
		}

		created, err := storage.CreateStudent(r.Context(), student)
		if err != nil {
			slog.Error("error creating student", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("student created", slog.String("id", created.ID))
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetByID handles GET /api/students/{id}
// Fetches a single student by id.
//
// Error responses:
//
//	404 Not Found: no student with that id
//	500 Internal: database error
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		slog.Info("getting a student", slog.String("id", id))

		student, err := storage.GetStudentByID(r.Context(), id)
		if err != nil {
			writeStorageError(w, "error getting student", id, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// GetList handles GET /api/students
// Returns a JSON array of all students in insertion order, or [] (not
// null) when there are none.
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := storage.GetStudents(r.Context())
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// Update handles PUT /api/students/{id}
// Replaces ALL fields of an existing student and returns the stored record.
//
// Error responses are those of New plus 404 for an unknown id.
func Update(storage storage.Storage, limits Limits) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		slog.Info("updating a student", slog.String("id", id))

		student, ok := decodeStudent(w, r, limits)
		if !ok {
			return
		}

		updated, err := storage.UpdateStudentByID(r.Context(), id, student)
		if err != nil {
			writeStorageError(w, "error updating student", id, err)
			return
		}

		slog.Info("student updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/students/{id}
// Permanently removes a student record.
//
// Success response (200 OK):
//
//	{ "status": "deleted" }
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		slog.Info("deleting a student", slog.String("id", id))

		if err := storage.DeleteStudentByID(r.Context(), id); err != nil {
			writeStorageError(w, "error deleting student", id, err)
			return
		}

		slog.Info("student deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// decodeStudent reads and checks the request body. On failure it has
// already written the response and returns false.
func decodeStudent(w http.ResponseWriter, r *http.Request, limits Limits) (types.Student, bool) {
	var student types.Student

	if !isJSON(r) {
		response.WriteJSON(w, http.StatusUnsupportedMediaType,
			response.Message("content type must be application/json"))
		return student, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(&student)

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		response.WriteJSON(w, http.StatusRequestEntityTooLarge,
			response.Message("request entity too large"))
		return student, false
	case errors.Is(err, io.EOF):
		// io.EOF means the body was completely empty: nothing to decode.
		response.WriteJSON(w, http.StatusBadRequest,
			response.Message("request body is empty"))
		return student, false
	case err != nil:
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return student, false
	}

	if err := validate.Struct(student); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return student, false
		}
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return student, false
	}

	// The id comes from the URL or the server, never from the body.
	student.ID = ""
	return student, true
}

func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && mediaType == "application/json"
}

func writeStorageError(w http.ResponseWriter, msg, id string, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
		return
	}
	slog.Error(msg, slog.String("id", id), slog.String("error", err.Error()))
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}
