package recordservice

import (
	"fmt"
	"net/http"

	"github.com/aanand-mishra/student-directory/internal/apperr"
)

// ServerError is a failed response the client has no more specific
// sentinel for. Message is the server's own explanation when it gave one.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server responded %d: %s", e.Status, e.StatusText())
}

// Is makes ServerError match apperr.ErrServer.
func (e *ServerError) Is(target error) bool { return target == apperr.ErrServer }

// StatusText is the server's message, else the HTTP status text.
func (e *ServerError) StatusText() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}
