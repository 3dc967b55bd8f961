package schema

import (
	"fmt"
	"strings"

	"adminkit/internal/metadata"
	"adminkit/internal/store"
)

// TableDefinition derives the table creation statement for an entity,
// followed by one index statement per indexed field and per declared
// composite index. Column order is field declaration order. All
// statements use IF NOT EXISTS so a lost creation race degrades to a
// no-op instead of corrupting state.
func TableDefinition(entity *metadata.Entity, dialect store.Dialect) (string, error) {
	table := entity.DBConfig.TableName

	cols := make([]string, 0, len(entity.Fields))
	for i := range entity.Fields {
		col, err := columnDefinition(&entity.Fields[i], dialect)
		if err != nil {
			return "", fmt.Errorf("field %q: %w", entity.Fields[i].Key, err)
		}
		cols = append(cols, col)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", table, strings.Join(cols, ",\n  "))

	for i := range entity.Fields {
		f := &entity.Fields[i]
		if !f.DBConfig.Indexed || f.DBConfig.ColumnName == "id" {
			continue
		}
		fmt.Fprintf(&b, "\nCREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (%s);",
			table, f.DBConfig.ColumnName, table, f.DBConfig.ColumnName)
	}

	for _, idx := range entity.DBConfig.Indexes {
		unique := ""
		if idx.Unique {
			unique = "UNIQUE "
		}
		fmt.Fprintf(&b, "\nCREATE %sINDEX IF NOT EXISTS idx_%s_%s ON %s (%s);",
			unique, table, strings.Join(idx.Columns, "_"), table, strings.Join(idx.Columns, ", "))
	}

	return b.String(), nil
}

func columnDefinition(f *metadata.Field, dialect store.Dialect) (string, error) {
	storageType, err := dialect.ColumnType(f.DBConfig.Type)
	if err != nil {
		return "", err
	}

	col := f.DBConfig.ColumnName + " " + storageType

	// The id column is the conventional primary identifier; PRIMARY KEY
	// already implies UNIQUE and NOT NULL.
	if f.DBConfig.ColumnName == "id" {
		return col + " PRIMARY KEY", nil
	}

	if f.DBConfig.Unique {
		col += " UNIQUE"
	}
	if !f.DBConfig.Nullable {
		col += " NOT NULL"
	}
	return col, nil
}
