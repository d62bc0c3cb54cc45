// Package postgres is a datastore.Store that talks to Postgres directly.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/competition-manager/internal/platform/datastore"
	"github.com/riskibarqy/competition-manager/internal/platform/logging"
	qb "github.com/riskibarqy/competition-manager/internal/platform/querybuilder"
	"github.com/riskibarqy/competition-manager/internal/usecase"
)

type Store struct {
	db     *sqlx.DB
	logger *logging.Logger
}

var _ datastore.Store = (*Store)(nil)

func NewStore(db *sqlx.DB, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{db: db, logger: logger.Named("postgres")}
}

func (s *Store) Select(ctx context.Context, table string, query datastore.Query) ([]datastore.Row, error) {
	stmt, args, err := buildSelect(table, query)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx, stmt, args...)
	if err != nil {
		return nil, s.classify(ctx, "select", table, err)
	}
	return s.scanRows(ctx, table, rows)
}

// Insert writes every row in one transaction; rows may carry different column sets.
func (s *Store) Insert(ctx context.Context, table string, rows []datastore.Row) ([]datastore.Row, error) {
	if len(rows) == 0 {
		return []datastore.Row{}, nil
	}
	stmts := make([]qb.Statement, 0, len(rows))
	for _, row := range rows {
		stmt, args, err := buildInsert(table, row)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, qb.Statement{SQL: stmt, Args: args})
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, s.classify(ctx, "begin insert", table, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	out := make([]datastore.Row, 0, len(rows))
	for _, stmt := range stmts {
		result, err := tx.QueryxContext(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return nil, s.classify(ctx, "insert", table, err)
		}
		inserted, err := s.scanRows(ctx, table, result)
		if err != nil {
			return nil, err
		}
		out = append(out, inserted...)
	}

	if err := tx.Commit(); err != nil {
		return nil, s.classify(ctx, "commit insert", table, err)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, table string, patch datastore.Row, filters []datastore.Filter) ([]datastore.Row, error) {
	stmt, args, err := buildUpdate(table, patch, filters)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx, stmt, args...)
	if err != nil {
		return nil, s.classify(ctx, "update", table, err)
	}
	return s.scanRows(ctx, table, rows)
}

func (s *Store) Delete(ctx context.Context, table string, filters []datastore.Filter) error {
	stmt, args, err := buildDelete(table, filters)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return s.classify(ctx, "delete", table, err)
	}
	return nil
}

func (s *Store) scanRows(ctx context.Context, table string, rows *sqlx.Rows) ([]datastore.Row, error) {
	defer func() {
		_ = rows.Close()
	}()

	out := make([]datastore.Row, 0)
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, s.classify(ctx, "scan", table, err)
		}
		out = append(out, normalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, s.classify(ctx, "scan", table, err)
	}
	return out, nil
}

// classify sorts driver errors into rejections (the request itself is wrong)
// and unavailability (anything that may succeed later).
func (s *Store) classify(ctx context.Context, op, table string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "23" || pqErr.Code.Class() == "22":
			return fmt.Errorf("%w: %s", usecase.ErrInvalidInput, pqErr.Message)
		case pqErr.Code == "42501":
			return fmt.Errorf("%w: %s", usecase.ErrForbidden, pqErr.Message)
		case pqErr.Code.Class() == "42":
			return fmt.Errorf("%w: %s", usecase.ErrInvalidInput, pqErr.Message)
		}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", usecase.ErrNotFound, err)
	}

	s.logger.WarnContext(ctx, "postgres operation failed", "op", op, "table", table, "error", err)
	return fmt.Errorf("%w: postgres %s %s: %v", usecase.ErrDependencyUnavailable, op, table, err)
}

func buildSelect(table string, query datastore.Query) (string, []any, error) {
	return rendered(qb.Select(table, query))
}

func buildInsert(table string, row datastore.Row) (string, []any, error) {
	return rendered(qb.Insert(table, row))
}

func buildUpdate(table string, patch datastore.Row, filters []datastore.Filter) (string, []any, error) {
	return rendered(qb.Update(table, patch, filters))
}

func buildDelete(table string, filters []datastore.Filter) (string, []any, error) {
	return rendered(qb.Delete(table, filters))
}

// rendered reports statements the builder refused as invalid input.
func rendered(stmt qb.Statement, err error) (string, []any, error) {
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return stmt.SQL, stmt.Args, nil
}

// normalizeRow turns driver byte slices (uuid, numeric) into strings.
func normalizeRow(row map[string]any) datastore.Row {
	out := make(datastore.Row, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			out[strings.ToLower(k)] = string(b)
			continue
		}
		out[strings.ToLower(k)] = v
	}
	return out
}
