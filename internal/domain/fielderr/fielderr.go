// Package fielderr carries domain validation failures tied to one stored column.
package fielderr

import "fmt"

// Error names the column that failed validation. An empty Reason means the
// value is required.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func Required(field string) error {
	return &Error{Field: field}
}

func Invalid(field, reason string) error {
	return &Error{Field: field, Reason: reason}
}
