package imageintake

import "github.com/aanand-mishra/student-directory/internal/apperr"

// Reason says why an image was rejected.
type Reason int

const (
	ReasonFailed Reason = iota
	ReasonFileSize
	ReasonMediaType
	ReasonEncodedSize
)

var messages = map[Reason]string{
	ReasonFailed:      "Failed to process image. Please try another image.",
	ReasonFileSize:    "Image size should be less than 10MB",
	ReasonMediaType:   "Please upload a valid image file (JPG, PNG, GIF, or WebP)",
	ReasonEncodedSize: "Image is too large. Please try a smaller image or use a URL instead.",
}

// Error is an image rejection. Its message is meant for the user; the
// underlying cause, if any, is available through Unwrap.
type Error struct {
	Reason Reason
	Cause  error
}

func newError(r Reason, cause error) *Error {
	return &Error{Reason: r, Cause: cause}
}

func (e *Error) Error() string {
	return messages[e.Reason]
}

func (e *Error) Unwrap() error { return e.Cause }

// Is makes every Error match apperr.ErrImageProcessing.
func (e *Error) Is(target error) bool { return target == apperr.ErrImageProcessing }
