// Package validation checks a student draft against the directory's field
// rules.
package validation

import (
	"errors"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/aanand-mishra/student-directory/internal/apperr"
	"github.com/aanand-mishra/student-directory/internal/types"
)

// Field names, matching the JSON keys of a record.
const (
	FieldName   = "name"
	FieldAge    = "age"
	FieldGroup  = "group"
	FieldEmail  = "email"
	FieldAvatar = "avatar"
)

// Age bounds, inclusive.
const (
	MinAge = 16
	MaxAge = 100
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Errors maps a field name to a human-readable message. An empty map
// means the draft is acceptable.
type Errors map[string]string

// Error joins the messages in field order so the value can travel as an
// error.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f+": "+e[f])
	}
	return strings.Join(msgs, "; ")
}

// Is makes Errors match apperr.ErrValidation.
func (e Errors) Is(target error) bool {
	return target == apperr.ErrValidation
}

// Validate checks every field of d independently and returns one message
// per failing field. Within a field the first failing rule wins, so an
// age of 15 reports the range, not positivity.
func Validate(d types.Draft) Errors {
	err := ozzo.ValidateStruct(&d,
		ozzo.Field(&d.Name,
			ozzo.By(notBlank("Name is required")),
			ozzo.By(minTrimmedLen(2, "Name must be at least 2 characters")),
		),
		ozzo.Field(&d.Age,
			ozzo.By(notBlank("Age is required")),
			ozzo.By(positiveNumber),
			ozzo.By(ageInRange),
		),
		ozzo.Field(&d.Group,
			ozzo.By(notBlank("Group is required")),
		),
		ozzo.Field(&d.Email,
			ozzo.By(notBlank("Email is required")),
			ozzo.By(matches(emailPattern, "Email is invalid")),
		),
		ozzo.Field(&d.Avatar,
			ozzo.By(optionalURL),
		),
	)

	out := Errors{}
	var fieldErrs ozzo.Errors
	if errors.As(err, &fieldErrs) {
		for field, ferr := range fieldErrs {
			out[field] = ferr.Error()
		}
	}
	return out
}

func notBlank(msg string) ozzo.RuleFunc {
	return func(value interface{}) error {
		if strings.TrimSpace(value.(string)) == "" {
			return errors.New(msg)
		}
		return nil
	}
}

func minTrimmedLen(n int, msg string) ozzo.RuleFunc {
	return func(value interface{}) error {
		if utf8.RuneCountInString(strings.TrimSpace(value.(string))) < n {
			return errors.New(msg)
		}
		return nil
	}
}

func matches(re *regexp.Regexp, msg string) ozzo.RuleFunc {
	return func(value interface{}) error {
		if !re.MatchString(value.(string)) {
			return errors.New(msg)
		}
		return nil
	}
}

func parseAge(value interface{}) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(value.(string)), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func positiveNumber(value interface{}) error {
	if n, ok := parseAge(value); !ok || n <= 0 {
		return errors.New("Age must be a positive number")
	}
	return nil
}

func ageInRange(value interface{}) error {
	n, _ := parseAge(value)
	if n < MinAge || n > MaxAge {
		return errors.New("Age must be between 16 and 100")
	}
	if n != math.Trunc(n) {
		return errors.New("Age must be a whole number")
	}
	return nil
}

// optionalURL accepts a blank avatar, an embedded image, or an absolute URL.
func optionalURL(value interface{}) error {
	s := strings.TrimSpace(value.(string))
	if s == "" || types.IsEmbedded(s) {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		return errors.New("Avatar URL is invalid")
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return errors.New("Avatar URL is invalid")
	}
	return nil
}
