package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"adminkit/internal/metadata"
)

// PostgresDialect implements Dialect for PostgreSQL via pgx/stdlib.
type PostgresDialect struct{}

func (d *PostgresDialect) Name() string       { return "postgres" }
func (d *PostgresDialect) DriverName() string { return "pgx" }

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (d *PostgresDialect) NewParamBuilder() ParamBuilder {
	return &pgParamBuilder{}
}

func (d *PostgresDialect) NeedsBoolFix() bool { return false }

func (d *PostgresDialect) ColumnType(t metadata.ColumnType) (string, error) {
	switch t {
	case metadata.TypeBoolean:
		return "BOOLEAN", nil
	case metadata.TypeChar:
		return "CHAR(255)", nil
	case metadata.TypeVarchar:
		return "VARCHAR(255)", nil
	case metadata.TypeText:
		return "TEXT", nil
	case metadata.TypeSmallint:
		return "SMALLINT", nil
	case metadata.TypeInteger:
		return "INTEGER", nil
	case metadata.TypeFloat:
		return "DOUBLE PRECISION", nil
	case metadata.TypeDate:
		return "DATE", nil
	case metadata.TypeTimestamp:
		return "TIMESTAMP", nil
	case metadata.TypeTimestamptz:
		return "TIMESTAMPTZ", nil
	case metadata.TypeJSONB:
		return "JSONB", nil
	case metadata.TypeUUID:
		return "UUID", nil
	default:
		return "", fmt.Errorf("unsupported type: %s", t)
	}
}

func (d *PostgresDialect) TableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = $1 AND table_schema = 'public')`,
		tableName,
	).Scan(&exists)
	return exists, err
}

func (d *PostgresDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		case "42P07", "42710":
			// duplicate table / duplicate object: a concurrent creation
			// won the race, which is fine for idempotent DDL
			return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
		}
	}
	return err
}
