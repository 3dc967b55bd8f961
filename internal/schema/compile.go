package schema

import (
	"fmt"

	"adminkit/internal/metadata"
	"adminkit/internal/store"
)

// Artifacts holds everything derived from one entity description. The
// schema instance is generated exactly once and shared by the router,
// the handlers and the documentation generator.
type Artifacts struct {
	Entity   *metadata.Entity
	Schema   *EntitySchema
	TableSQL string
	Routes   RouteSet
}

// Compiled is the full set of artifacts for a registry, in registration
// order.
type Compiled struct {
	Registry *metadata.Registry

	ordered []*Artifacts
	byTable map[string]*Artifacts
}

// Compile runs every generator against every registered entity. Any
// failure is a broken entity description; callers must abort startup.
func Compile(registry *metadata.Registry, dialect store.Dialect) (*Compiled, error) {
	c := &Compiled{
		Registry: registry,
		byTable:  make(map[string]*Artifacts),
	}

	for _, entity := range registry.Entities() {
		entitySchema, err := Generate(entity)
		if err != nil {
			return nil, fmt.Errorf("generate schema for %q: %w", entity.Key, err)
		}
		tableSQL, err := TableDefinition(entity, dialect)
		if err != nil {
			return nil, fmt.Errorf("generate table definition for %q: %w", entity.Key, err)
		}

		a := &Artifacts{
			Entity:   entity,
			Schema:   entitySchema,
			TableSQL: tableSQL,
			Routes:   RoutesFor(entity),
		}
		c.ordered = append(c.ordered, a)
		c.byTable[entity.DBConfig.TableName] = a
	}

	return c, nil
}

// All returns artifacts in entity registration order.
func (c *Compiled) All() []*Artifacts {
	return c.ordered
}

// ByTable returns the artifacts for the entity mounted at the given
// table name, or nil.
func (c *Compiled) ByTable(table string) *Artifacts {
	return c.byTable[table]
}

// BoolColumns returns the columns of boolean type, used to normalize
// rows coming back from storage engines without a native boolean.
func (a *Artifacts) BoolColumns() []string {
	var cols []string
	for _, f := range a.Entity.Fields {
		if f.DBConfig.Type == metadata.TypeBoolean {
			cols = append(cols, f.DBConfig.ColumnName)
		}
	}
	return cols
}

// TimeColumns returns the columns with temporal types. Only these may
// have stored string values parsed back into time values; sniffing any
// other column would mangle a varchar that happens to look like a date.
func (a *Artifacts) TimeColumns() []string {
	var cols []string
	for _, f := range a.Entity.Fields {
		switch f.DBConfig.Type {
		case metadata.TypeDate, metadata.TypeTimestamp, metadata.TypeTimestamptz:
			cols = append(cols, f.DBConfig.ColumnName)
		}
	}
	return cols
}

// JSONColumns returns the jsonb columns, stored as canonical string
// encodings and decoded back into values on read.
func (a *Artifacts) JSONColumns() []string {
	var cols []string
	for _, f := range a.Entity.Fields {
		if f.DBConfig.Type == metadata.TypeJSONB {
			cols = append(cols, f.DBConfig.ColumnName)
		}
	}
	return cols
}
