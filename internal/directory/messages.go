package directory

import (
	"errors"

	"github.com/aanand-mishra/student-directory/internal/apperr"
	"github.com/aanand-mishra/student-directory/internal/imageintake"
	"github.com/aanand-mishra/student-directory/internal/recordservice"
)

// Form-level texts for failed submissions.
const (
	MsgPayloadTooLarge  = "Image is too large for the server. Please use a smaller image or a URL instead."
	MsgUnsupportedMedia = "Image format not supported. Please use JPG, PNG, GIF, or WebP."
	MsgNetwork          = "Network error. Please check your internet connection."
	MsgSaveFailed       = "Failed to save student. Please try again."
	MsgFixFields        = "Please fix the highlighted fields."
)

// UserMessage turns err into the text shown to the user. It returns ""
// for a nil error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, apperr.ErrValidation) {
		return MsgFixFields
	}
	var ie *imageintake.Error
	if errors.As(err, &ie) {
		return ie.Error()
	}
	if m := networkMessage(err); m != "" {
		return m
	}
	var se *recordservice.ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return MsgSaveFailed
}

// networkMessage covers the failures that read the same whatever the
// operation was.
func networkMessage(err error) string {
	switch {
	case errors.Is(err, apperr.ErrPayloadTooLarge):
		return MsgPayloadTooLarge
	case errors.Is(err, apperr.ErrUnsupportedMedia):
		return MsgUnsupportedMedia
	case errors.Is(err, apperr.ErrNetwork):
		return MsgNetwork
	}
	return ""
}
