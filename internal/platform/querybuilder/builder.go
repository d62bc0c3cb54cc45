// Package querybuilder renders datastore operations as Postgres statements
// with positional ($n) arguments.
package querybuilder

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/competition-manager/internal/platform/datastore"
)

// ErrInvalidStatement marks operations that cannot be rendered safely.
var ErrInvalidStatement = errors.New("invalid statement")

// Statement is rendered SQL plus its arguments in placeholder order.
type Statement struct {
	SQL  string
	Args []any
}

// Select renders SELECT * with equality filters and an optional order.
func Select(table string, query datastore.Query) (Statement, error) {
	var w writer
	w.keyword("SELECT * FROM ")
	w.ident(table)
	w.where(query.Filters)
	if query.Order != nil {
		w.keyword(" ORDER BY ")
		w.ident(query.Order.Column)
		if query.Order.Descending {
			w.keyword(" DESC")
		} else {
			w.keyword(" ASC")
		}
	}
	return w.statement()
}

// Insert renders a single-row INSERT ... RETURNING *. Columns are sorted so a
// given row always produces the same SQL.
func Insert(table string, row datastore.Row) (Statement, error) {
	columns := sortedColumns(row)
	if len(columns) == 0 {
		return Statement{}, invalid("insert into %s has no columns", table)
	}

	var w writer
	w.keyword("INSERT INTO ")
	w.ident(table)
	w.keyword(" (")
	for i, column := range columns {
		if i > 0 {
			w.keyword(", ")
		}
		w.ident(column)
	}
	w.keyword(") VALUES (")
	for i, column := range columns {
		if i > 0 {
			w.keyword(", ")
		}
		w.bind(row[column])
	}
	w.keyword(") RETURNING *")
	return w.statement()
}

// Update renders UPDATE ... RETURNING *. Filters are mandatory.
func Update(table string, patch datastore.Row, filters []datastore.Filter) (Statement, error) {
	if len(filters) == 0 {
		return Statement{}, invalid("update of %s requires a filter", table)
	}
	columns := sortedColumns(patch)
	if len(columns) == 0 {
		return Statement{}, invalid("update of %s has no columns", table)
	}

	var w writer
	w.keyword("UPDATE ")
	w.ident(table)
	w.keyword(" SET ")
	for i, column := range columns {
		if i > 0 {
			w.keyword(", ")
		}
		w.ident(column)
		w.keyword(" = ")
		w.bind(patch[column])
	}
	w.where(filters)
	w.keyword(" RETURNING *")
	return w.statement()
}

// Delete renders DELETE FROM. An unfiltered delete would wipe the table and
// is refused.
func Delete(table string, filters []datastore.Filter) (Statement, error) {
	if len(filters) == 0 {
		return Statement{}, invalid("delete from %s requires a filter", table)
	}

	var w writer
	w.keyword("DELETE FROM ")
	w.ident(table)
	w.where(filters)
	return w.statement()
}

// writer accumulates SQL and arguments; the first bad identifier sticks.
type writer struct {
	buf  strings.Builder
	args []any
	err  error
}

func (w *writer) keyword(s string) {
	w.buf.WriteString(s)
}

func (w *writer) ident(name string) {
	if w.err == nil && !datastore.ValidIdentifier(name) {
		w.err = invalid("unsafe identifier %q", name)
	}
	w.buf.WriteString(name)
}

func (w *writer) bind(value any) {
	w.args = append(w.args, value)
	w.buf.WriteString("$")
	w.buf.WriteString(strconv.Itoa(len(w.args)))
}

// where joins equality filters with AND; a nil value matches NULL.
func (w *writer) where(filters []datastore.Filter) {
	for i, f := range filters {
		if i == 0 {
			w.keyword(" WHERE ")
		} else {
			w.keyword(" AND ")
		}
		w.ident(f.Column)
		if f.Value == nil {
			w.keyword(" IS NULL")
			continue
		}
		w.keyword(" = ")
		w.bind(f.Value)
	}
}

func (w *writer) statement() (Statement, error) {
	if w.err != nil {
		return Statement{}, w.err
	}
	return Statement{SQL: w.buf.String(), Args: w.args}, nil
}

func sortedColumns(row datastore.Row) []string {
	columns := make([]string, 0, len(row))
	for column := range row {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidStatement, fmt.Sprintf(format, args...))
}
