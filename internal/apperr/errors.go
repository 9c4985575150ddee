// Package apperr holds the sentinel errors shared by the client and the
// server. Match them with errors.Is; concrete error types elsewhere wrap
// or report themselves as one of these.
package apperr

import "errors"

var (
	// ErrNotFound is returned when no record matches an id.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks field-level draft errors. They are shown inline
	// and never sent to the network layer.
	ErrValidation = errors.New("validation failed")

	// ErrImageProcessing covers every image intake rejection: wrong size,
	// wrong type, too large once encoded, or a decode/encode failure.
	ErrImageProcessing = errors.New("image processing failed")

	// ErrPayloadTooLarge is returned by the local pre-send size check and
	// for HTTP 413 responses.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrUnsupportedMedia is returned for HTTP 415 responses.
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// ErrNetwork is returned when the remote store could not be reached.
	ErrNetwork = errors.New("network error")

	// ErrServer is returned for any other failed response.
	ErrServer = errors.New("server error")
)
