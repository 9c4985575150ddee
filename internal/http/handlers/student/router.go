package student

import (
	"github.com/go-chi/chi/v5"

	"github.com/aanand-mishra/student-directory/internal/storage"
)

// NewRouter mounts the student routes:
//
//	POST   /students        → create a new student
//	GET    /students        → list all students
//	GET    /students/{id}   → get one student by id
//	PUT    /students/{id}   → update a student
//	DELETE /students/{id}   → delete a student
func NewRouter(storage storage.Storage, limits Limits) chi.Router {
	r := chi.NewRouter()

	r.Post("/students", New(storage, limits))
	r.Get("/students", GetList(storage))
	r.Get("/students/{id}", GetByID(storage))
	r.Put("/students/{id}", Update(storage, limits))
	r.Delete("/students/{id}", Delete(storage))

	return r
}
