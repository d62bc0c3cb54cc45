// Package memory provides process-local Store and Authenticator drivers for demo mode.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/competition-manager/internal/platform/datastore"
	"github.com/riskibarqy/competition-manager/internal/platform/id"
	"github.com/riskibarqy/competition-manager/internal/usecase"
)

type table struct {
	rows  map[string]datastore.Row
	order []string
}

// Store keeps every table in memory. Rows are copied on the way in and out.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*table
	ids    id.Generator
}

var _ datastore.Store = (*Store)(nil)

func NewStore(ids id.Generator) *Store {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &Store{
		tables: make(map[string]*table),
		ids:    ids,
	}
}

func (s *Store) Select(ctx context.Context, tableName string, query datastore.Query) ([]datastore.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[tableName]
	if !ok {
		return []datastore.Row{}, nil
	}

	out := make([]datastore.Row, 0, len(t.order))
	for _, rowID := range t.order {
		row := t.rows[rowID]
		if matches(row, query.Filters) {
			out = append(out, copyRow(row))
		}
	}

	if query.Order != nil {
		column := query.Order.Column
		desc := query.Order.Descending
		sort.SliceStable(out, func(i, j int) bool {
			cmp := compareValues(out[i][column], out[j][column])
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	return out, nil
}

func (s *Store) Insert(ctx context.Context, tableName string, rows []datastore.Row) ([]datastore.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(tableName)
	prepared := make([]datastore.Row, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		item := copyRow(row)
		rowID := rowKey(item)
		if rowID == "" {
			generated, err := s.ids.NewID()
			if err != nil {
				return nil, fmt.Errorf("%w: generate id: %v", usecase.ErrDependencyUnavailable, err)
			}
			rowID = generated
			item["id"] = rowID
		}
		if _, exists := t.rows[rowID]; exists {
			return nil, fmt.Errorf("%w: duplicate key value violates unique constraint on %s.id", usecase.ErrInvalidInput, tableName)
		}
		if _, dup := seen[rowID]; dup {
			return nil, fmt.Errorf("%w: duplicate key value violates unique constraint on %s.id", usecase.ErrInvalidInput, tableName)
		}
		seen[rowID] = struct{}{}
		prepared = append(prepared, item)
	}

	out := make([]datastore.Row, 0, len(prepared))
	for _, item := range prepared {
		rowID := rowKey(item)
		t.rows[rowID] = item
		t.order = append(t.order, rowID)
		out = append(out, copyRow(item))
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, tableName string, patch datastore.Row, filters []datastore.Filter) ([]datastore.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}
	if len(filters) == 0 {
		return nil, fmt.Errorf("%w: update requires a filter", usecase.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableName]
	if !ok {
		return []datastore.Row{}, nil
	}

	out := make([]datastore.Row, 0, 1)
	for _, rowID := range t.order {
		row := t.rows[rowID]
		if !matches(row, filters) {
			continue
		}
		for column, value := range patch {
			if column == "id" {
				continue
			}
			row[column] = value
		}
		out = append(out, copyRow(row))
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, tableName string, filters []datastore.Filter) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}
	if len(filters) == 0 {
		return fmt.Errorf("%w: delete requires a filter", usecase.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableName]
	if !ok {
		return nil
	}

	kept := t.order[:0]
	for _, rowID := range t.order {
		if matches(t.rows[rowID], filters) {
			delete(t.rows, rowID)
			continue
		}
		kept = append(kept, rowID)
	}
	t.order = kept
	return nil
}

func (s *Store) table(name string) *table {
	t, ok := s.tables[name]
	if !ok {
		t = &table{rows: make(map[string]datastore.Row)}
		s.tables[name] = t
	}
	return t
}

func matches(row datastore.Row, filters []datastore.Filter) bool {
	for _, f := range filters {
		value, ok := row[f.Column]
		if f.Value == nil {
			if ok && value != nil {
				return false
			}
			continue
		}
		if !ok || value == nil || stringify(value) != stringify(f.Value) {
			return false
		}
	}
	return true
}

func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(stringify(a), stringify(b))
}

func toFloat(v any) (float64, bool) {
	switch typed := v.(type) {
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case float64:
		return typed, true
	default:
		return 0, false
	}
}

func stringify(v any) string {
	switch typed := v.(type) {
	case string:
		return typed
	case time.Time:
		return typed.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(typed)
	}
}

func rowKey(row datastore.Row) string {
	if row == nil || row["id"] == nil {
		return ""
	}
	return strings.TrimSpace(stringify(row["id"]))
}

func copyRow(row datastore.Row) datastore.Row {
	out := make(datastore.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
