package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx as database/sql driver
	_ "modernc.org/sqlite"             // Register sqlite as database/sql driver

	"adminkit/internal/config"
)

var ErrNotFound = errors.New("not found")
var ErrUniqueViolation = errors.New("unique constraint violation")
var ErrAlreadyExists = errors.New("already exists")

// Querier is implemented by both *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store wraps a database connection and dialect.
type Store struct {
	DB      *sql.DB
	Dialect Dialect
}

// New opens a connection from config and verifies it with a ping.
func New(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "postgres"
	}

	dialect := NewDialect(driver)
	db, err := sql.Open(dialect.DriverName(), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == "postgres" {
		if cfg.PoolSize > 0 {
			db.SetMaxOpenConns(cfg.PoolSize)
		}
	} else {
		// SQLite: single writer, WAL mode for concurrent reads
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Store{DB: db, Dialect: dialect}, nil
}

// NewSQLiteMemory opens an in-memory SQLite store, used by tests.
func NewSQLiteMemory(ctx context.Context) (*Store, error) {
	dialect := NewDialect("sqlite")
	db, err := sql.Open(dialect.DriverName(), ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{DB: db, Dialect: dialect}, nil
}

// Close closes the database connection.
func (s *Store) Close() {
	s.DB.Close()
}

// QueryRows executes a query and returns results as []map[string]any.
func QueryRows(ctx context.Context, q Querier, sqlStr string, args ...any) ([]map[string]any, error) {
	rows, err := q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return results, nil
}

// QueryRow executes a query and returns a single row as map[string]any.
func QueryRow(ctx context.Context, q Querier, sqlStr string, args ...any) (map[string]any, error) {
	rows, err := QueryRows(ctx, q, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Exec executes a statement and returns the number of rows affected.
func Exec(ctx context.Context, q Querier, sqlStr string, args ...any) (int64, error) {
	result, err := q.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// normalizeValue converts database-specific types to JSON-serializable
// Go types. Column-type-aware conversions (booleans, times, jsonb) are
// applied by the caller, which knows the entity; a raw value here could
// be a varchar that merely looks like something else.
func normalizeValue(v any) any {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case []byte:
		// database/sql often returns []byte for TEXT columns
		return string(val)
	default:
		return val
	}
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// NormalizeTimes parses stored string values back into time.Time for the
// given temporal columns. Engines that keep timestamps as text (SQLite)
// otherwise leak the storage encoding into responses; values already
// typed (Postgres) pass through untouched.
func NormalizeTimes(rows []map[string]any, timeColumns []string) {
	if len(timeColumns) == 0 || len(rows) == 0 {
		return
	}
	timeSet := make(map[string]bool, len(timeColumns))
	for _, c := range timeColumns {
		timeSet[c] = true
	}
	for _, row := range rows {
		for k, v := range row {
			if !timeSet[k] {
				continue
			}
			s, ok := v.(string)
			if !ok {
				continue
			}
			for _, layout := range timeLayouts {
				if t, err := time.Parse(layout, s); err == nil {
					row[k] = t
					break
				}
			}
		}
	}
}

// DecodeJSONColumns decodes canonical jsonb string encodings back into
// values for the given columns, so responses carry the submitted JSON
// shape rather than its stored string form.
func DecodeJSONColumns(rows []map[string]any, jsonColumns []string) {
	if len(jsonColumns) == 0 || len(rows) == 0 {
		return
	}
	jsonSet := make(map[string]bool, len(jsonColumns))
	for _, c := range jsonColumns {
		jsonSet[c] = true
	}
	for _, row := range rows {
		for k, v := range row {
			if !jsonSet[k] {
				continue
			}
			s, ok := v.(string)
			if !ok {
				continue
			}
			var decoded any
			if err := json.Unmarshal([]byte(s), &decoded); err == nil {
				row[k] = decoded
			}
		}
	}
}

// NormalizeBooleans converts integer 0/1 values to bool for specified
// columns. Needed for SQLite, where BOOLEAN columns are stored as INTEGER.
func NormalizeBooleans(rows []map[string]any, boolColumns []string) {
	if len(boolColumns) == 0 || len(rows) == 0 {
		return
	}
	boolSet := make(map[string]bool, len(boolColumns))
	for _, c := range boolColumns {
		boolSet[c] = true
	}
	for _, row := range rows {
		for k, v := range row {
			if !boolSet[k] {
				continue
			}
			switch val := v.(type) {
			case int64:
				row[k] = val != 0
			case int:
				row[k] = val != 0
			case float64:
				row[k] = val != 0
			}
		}
	}
}
