package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"adminkit/internal/metadata"
)

// SQLiteDialect implements Dialect for SQLite via modernc.org/sqlite.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string       { return "sqlite" }
func (d *SQLiteDialect) DriverName() string { return "sqlite" }

func (d *SQLiteDialect) Placeholder(index int) string {
	return fmt.Sprintf("?%d", index)
}

func (d *SQLiteDialect) NewParamBuilder() ParamBuilder {
	return &sqliteParamBuilder{}
}

func (d *SQLiteDialect) NeedsBoolFix() bool { return true }

func (d *SQLiteDialect) ColumnType(t metadata.ColumnType) (string, error) {
	switch t {
	case metadata.TypeBoolean:
		return "INTEGER", nil
	case metadata.TypeChar, metadata.TypeVarchar, metadata.TypeText:
		return "TEXT", nil
	case metadata.TypeSmallint, metadata.TypeInteger:
		return "INTEGER", nil
	case metadata.TypeFloat:
		return "REAL", nil
	case metadata.TypeDate, metadata.TypeTimestamp, metadata.TypeTimestamptz:
		return "TEXT", nil
	case metadata.TypeJSONB:
		return "TEXT", nil
	case metadata.TypeUUID:
		return "TEXT", nil
	default:
		return "", fmt.Errorf("unsupported type: %s", t)
	}
}

func (d *SQLiteDialect) TableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?1",
		tableName,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *SQLiteDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	if strings.Contains(msg, "already exists") {
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	}
	return err
}
