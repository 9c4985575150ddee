// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// the server handlers, the storage layer, the record-service client and
// the directory controller can all import types without depending on
// each other.
package types

import (
	"fmt"
	"strings"
)

// EmbeddedPrefix marks an avatar that carries the image itself as a
// data URI instead of pointing at a URL.
const EmbeddedPrefix = "data:image/"

// Student represents one directory entry.
//
// Struct tags serve two purposes:
//
//  1. json:"...": controls how the field appears when encoded to JSON
//     (lowercase names match the remote API).
//
//  2. validate:"...": rules checked by the go-playground/validator
//     package on the server side. "required" means the field must be
//     non-zero / non-empty. The server deliberately stops there: field
//     formats are the client's business.
type Student struct {
	ID     string `json:"id"`
	Name   string `json:"name"   validate:"required"`
	Age    Age    `json:"age"    validate:"required"`
	Group  string `json:"group"  validate:"required"`
	Email  string `json:"email"  validate:"required"`
	Avatar string `json:"avatar"`
}

// AvatarURL returns the avatar to display for s: the stored value, or a
// deterministic placeholder keyed by the record id when none is stored.
func (s Student) AvatarURL() string {
	if s.Avatar != "" {
		return s.Avatar
	}
	return PlaceholderAvatar(s.ID)
}

// Draft is the user-edited, not-yet-validated field set for a create or
// update. Every field is kept exactly as typed.
type Draft struct {
	Name   string `json:"name"`
	Age    string `json:"age"`
	Group  string `json:"group"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// DraftFrom copies an existing record into an editable draft.
func DraftFrom(s Student) Draft {
	return Draft{
		Name:   s.Name,
		Age:    s.Age.String(),
		Group:  s.Group,
		Email:  s.Email,
		Avatar: s.Avatar,
	}
}

// AvatarKind tells a preview whether the avatar was uploaded (embedded)
// or typed in as a URL.
type AvatarKind string

const (
	AvatarNone     AvatarKind = ""
	AvatarURL      AvatarKind = "url"
	AvatarEmbedded AvatarKind = "upload"
)

// KindOf classifies an avatar value.
func KindOf(avatar string) AvatarKind {
	switch {
	case avatar == "":
		return AvatarNone
	case IsEmbedded(avatar):
		return AvatarEmbedded
	default:
		return AvatarURL
	}
}

// Label is the caption shown next to an avatar preview.
func (k AvatarKind) Label() string {
	if k == AvatarEmbedded {
		return "(Uploaded Image)"
	}
	return "(URL Image)"
}

// IsEmbedded reports whether avatar is an embedded image encoding.
func IsEmbedded(avatar string) bool {
	return strings.HasPrefix(avatar, EmbeddedPrefix)
}

// PlaceholderAvatar returns the placeholder image URL for seed. The same
// seed always yields the same picture.
func PlaceholderAvatar(seed string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/300/150.jpg", seed)
}
