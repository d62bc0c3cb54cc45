// Package datastore defines the table-oriented contract of the remote data
// store that every driver implements.
package datastore

import (
	"context"
	"regexp"
)

// Row is one record keyed by column name.
type Row map[string]any

// Filter is an equality condition on a column.
type Filter struct {
	Column string
	Value  any
}

// Order sorts a selection by a single column.
type Order struct {
	Column     string
	Descending bool
}

type Query struct {
	Filters []Filter
	Order   *Order
}

// Eq is shorthand for an equality filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// Store is implemented by the supabase, postgres and memory drivers.
//
// Rejections by the store wrap usecase.ErrUnauthorized or usecase.ErrInvalidInput;
// failures to reach it wrap usecase.ErrDependencyUnavailable.
type Store interface {
	Select(ctx context.Context, table string, query Query) ([]Row, error)
	Insert(ctx context.Context, table string, rows []Row) ([]Row, error)
	Update(ctx context.Context, table string, patch Row, filters []Filter) ([]Row, error)
	// Delete succeeds when nothing matches.
	Delete(ctx context.Context, table string, filters []Filter) error
}

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to use as a table or column name.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}
