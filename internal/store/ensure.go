package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// TableEnsurer serializes lazy table creation. Tables are created on the
// first write for their entity; two concurrent first-writes must not both
// race through the existence check. Creation is guarded per table by a
// mutex and the DDL itself uses IF NOT EXISTS, so a race against another
// process degrades to a tolerated duplicate-object error.
type TableEnsurer struct {
	store *Store

	mu      sync.Mutex
	ensured map[string]bool
}

func NewTableEnsurer(s *Store) *TableEnsurer {
	return &TableEnsurer{store: s, ensured: make(map[string]bool)}
}

// Ensure creates the table from the given definition if it does not exist
// yet. The definition may contain several statements separated by ";\n"
// (the table plus its index statements); they are executed one at a time
// because neither driver accepts multi-statement execs reliably.
func (e *TableEnsurer) Ensure(ctx context.Context, tableName, definition string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ensured[tableName] {
		return nil
	}

	exists, err := e.store.Dialect.TableExists(ctx, e.store.DB, tableName)
	if err != nil {
		return fmt.Errorf("check table exists: %w", err)
	}
	if exists {
		e.ensured[tableName] = true
		return nil
	}

	for _, stmt := range SplitStatements(definition) {
		if _, err := e.store.DB.ExecContext(ctx, stmt); err != nil {
			mapped := e.store.Dialect.MapError(err)
			if errors.Is(mapped, ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("create table %s: %w", tableName, err)
		}
	}

	e.ensured[tableName] = true
	return nil
}

// SplitStatements splits a generated table definition into individual
// SQL statements.
func SplitStatements(definition string) []string {
	var stmts []string
	for _, part := range strings.Split(definition, ";\n") {
		part = strings.TrimSpace(strings.TrimSuffix(part, ";"))
		if part != "" {
			stmts = append(stmts, part)
		}
	}
	return stmts
}
