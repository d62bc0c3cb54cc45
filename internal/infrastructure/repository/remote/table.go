// Package remote implements the entity repositories on top of a datastore.Store.
package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/competition-manager/internal/platform/datastore"
	"github.com/riskibarqy/competition-manager/internal/platform/logging"
	"github.com/riskibarqy/competition-manager/internal/usecase"
)

const (
	columnID        = "id"
	columnCreatedAt = "created_at"
	columnUpdatedAt = "updated_at"
)

// Schema describes how an entity maps onto its remote table.
type Schema struct {
	Table        string
	OwnerColumn  string
	ParentColumn string
	// OrderColumn sorts List and ListByOwner descending when set.
	OrderColumn string
	// Required columns must be non-blank on create and, when present, on update.
	Required []string
}

// Codec converts between entities, patches and store rows.
type Codec[T, P any] struct {
	Encode      func(item T) datastore.Row
	EncodePatch func(patch P) datastore.Row
	Decode      func(row datastore.Row) T
}

// Table is the repository shared by every entity.
type Table[T, P any] struct {
	store  datastore.Store
	schema Schema
	codec  Codec[T, P]
	logger *logging.Logger
	now    func() time.Time
}

func NewTable[T, P any](store datastore.Store, schema Schema, codec Codec[T, P], logger *logging.Logger) *Table[T, P] {
	if logger == nil {
		logger = logging.Default()
	}
	return &Table[T, P]{
		store:  store,
		schema: schema,
		codec:  codec,
		logger: logger.With("table", schema.Table),
		now:    time.Now,
	}
}

func (t *Table[T, P]) List(ctx context.Context) ([]T, error) {
	rows, err := t.store.Select(ctx, t.schema.Table, datastore.Query{Order: t.order()})
	if err != nil {
		return nil, t.fail(ctx, "select", "", err)
	}
	return t.decodeAll(rows), nil
}

func (t *Table[T, P]) ListByOwner(ctx context.Context, ownerID string) ([]T, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, usecase.ErrMissingOwnerID
	}
	if t.schema.OwnerColumn == "" {
		return nil, fmt.Errorf("%w: %s is not owner scoped", usecase.ErrInvalidInput, t.schema.Table)
	}

	rows, err := t.store.Select(ctx, t.schema.Table, datastore.Query{
		Filters: []datastore.Filter{datastore.Eq(t.schema.OwnerColumn, ownerID)},
		Order:   t.order(),
	})
	if err != nil {
		return nil, t.fail(ctx, "select", "", err)
	}
	return t.decodeAll(rows), nil
}

func (t *Table[T, P]) ListByParent(ctx context.Context, parentID string) ([]T, error) {
	parentID = strings.TrimSpace(parentID)
	if parentID == "" {
		return nil, usecase.ErrMissingID
	}
	if t.schema.ParentColumn == "" {
		return nil, fmt.Errorf("%w: %s has no parent", usecase.ErrInvalidInput, t.schema.Table)
	}

	rows, err := t.store.Select(ctx, t.schema.Table, datastore.Query{
		Filters: []datastore.Filter{datastore.Eq(t.schema.ParentColumn, parentID)},
		Order:   t.order(),
	})
	if err != nil {
		return nil, t.fail(ctx, "select", "", err)
	}
	return t.decodeAll(rows), nil
}

func (t *Table[T, P]) GetByID(ctx context.Context, id string) (T, bool, error) {
	var zero T
	id = strings.TrimSpace(id)
	if id == "" {
		return zero, false, usecase.ErrMissingID
	}

	rows, err := t.store.Select(ctx, t.schema.Table, datastore.Query{
		Filters: []datastore.Filter{datastore.Eq(columnID, id)},
	})
	if err != nil {
		return zero, false, t.fail(ctx, "select", id, err)
	}
	if len(rows) == 0 {
		return zero, false, nil
	}
	return t.codec.Decode(rows[0]), true, nil
}

func (t *Table[T, P]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	row := t.codec.Encode(item)
	for _, column := range t.schema.Required {
		if isBlank(row[column]) {
			return zero, &usecase.ValidationError{Field: column}
		}
	}

	if id, ok := row[columnID].(string); ok && strings.TrimSpace(id) == "" {
		delete(row, columnID)
	}
	now := t.now().UTC()
	if isBlank(row[columnCreatedAt]) {
		row[columnCreatedAt] = now
	}
	if isBlank(row[columnUpdatedAt]) {
		row[columnUpdatedAt] = now
	}

	rows, err := t.store.Insert(ctx, t.schema.Table, []datastore.Row{row})
	if err != nil {
		return zero, t.fail(ctx, "insert", "", err)
	}
	if len(rows) != 1 {
		return zero, t.fail(ctx, "insert", "", fmt.Errorf("store returned %d rows, expected 1", len(rows)))
	}
	return t.codec.Decode(rows[0]), nil
}

func (t *Table[T, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var zero T
	id = strings.TrimSpace(id)
	if id == "" {
		return zero, usecase.ErrMissingID
	}

	row := t.codec.EncodePatch(patch)
	for _, column := range t.schema.Required {
		if value, ok := row[column]; ok && isBlank(value) {
			return zero, &usecase.ValidationError{Field: column}
		}
	}
	delete(row, columnID)
	delete(row, columnCreatedAt)
	row[columnUpdatedAt] = t.now().UTC()

	rows, err := t.store.Update(ctx, t.schema.Table, row, []datastore.Filter{datastore.Eq(columnID, id)})
	if err != nil {
		return zero, t.fail(ctx, "update", id, err)
	}
	if len(rows) == 0 {
		return zero, fmt.Errorf("%w: %s id=%s", usecase.ErrNotFound, t.schema.Table, id)
	}
	return t.codec.Decode(rows[0]), nil
}

func (t *Table[T, P]) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return usecase.ErrMissingID
	}
	if err := t.store.Delete(ctx, t.schema.Table, []datastore.Filter{datastore.Eq(columnID, id)}); err != nil {
		return t.fail(ctx, "delete", id, err)
	}
	return nil
}

func (t *Table[T, P]) order() *datastore.Order {
	if t.schema.OrderColumn == "" {
		return nil
	}
	return &datastore.Order{Column: t.schema.OrderColumn, Descending: true}
}

func (t *Table[T, P]) decodeAll(rows []datastore.Row) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, t.codec.Decode(row))
	}
	return out
}

func (t *Table[T, P]) fail(ctx context.Context, op, id string, err error) error {
	t.logger.WarnContext(ctx, "store operation failed", "op", op, "id", id, "error", err)
	return &usecase.StoreError{Op: op, Table: t.schema.Table, ID: id, Err: err}
}

func isBlank(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case time.Time:
		return typed.IsZero()
	default:
		return false
	}
}
