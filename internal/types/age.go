package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Age is a student's age as it travels over the wire.
//
// Remote stores are not strict about this field: the same API may hand
// back 20, "20" or null depending on who wrote the record. Age keeps the
// raw text so nothing is lost on a round trip, and Int gives the numeric
// view used for sorting.
type Age string

// AgeOf builds an Age from an integer.
func AgeOf(n int) Age {
	return Age(strconv.Itoa(n))
}

// String returns the raw text.
func (a Age) String() string {
	return string(a)
}

// Int returns the leading integer of the raw text, or 0 when there is
// none. "21", " 21 ", "21.9" and "21 years" all give 21.
func (a Age) Int() int {
	s := strings.TrimSpace(string(a))
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// IsZero reports whether no age was supplied.
func (a Age) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}

// MarshalJSON writes an integer age as a JSON number and anything else
// as a string.
func (a Age) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(a))
	if _, err := strconv.Atoi(s); err == nil {
		return []byte(s), nil
	}
	return json.Marshal(string(a))
}

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (a *Age) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("age: %w", err)
		}
		*a = Age(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("age: %w", err)
		}
		*a = Age(n.String())
		return nil
	}
}
