package metadata

import (
	"fmt"
	"regexp"
)

// Registry is the immutable, ordered set of entity descriptions. It is
// constructed once at startup and passed by reference into every
// generator and handler; nothing reads it through ambient state.
type Registry struct {
	ordered []*Entity
	byKey   map[string]*Entity
	byTable map[string]*Entity
}

var identifierRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// inputKinds maps each column type to the input kinds a field of that
// type may declare. A mismatch is a definition-time error: a uuid column
// rendered as a number widget is a broken description, not a runtime
// condition.
var inputKinds = map[ColumnType][]InputKind{
	TypeBoolean:     {InputCheckbox},
	TypeChar:        {InputText, InputSelect},
	TypeVarchar:     {InputText, InputSelect, InputMultiSelect},
	TypeText:        {InputText, InputTextarea, InputSelect},
	TypeSmallint:    {InputNumber},
	TypeInteger:     {InputNumber},
	TypeFloat:       {InputNumber},
	TypeDate:        {InputDate},
	TypeTimestamp:   {InputDate},
	TypeTimestamptz: {InputDate},
	TypeJSONB:       {InputJSON, InputText, InputMultiSelect},
	TypeUUID:        {InputUUID, InputText},
}

// NewRegistry validates the entity descriptions and builds the registry.
// Iteration order is registration order.
func NewRegistry(entities ...*Entity) (*Registry, error) {
	r := &Registry{
		byKey:   make(map[string]*Entity, len(entities)),
		byTable: make(map[string]*Entity, len(entities)),
	}

	for _, e := range entities {
		if err := validateEntity(e); err != nil {
			return nil, fmt.Errorf("entity %q: %w", e.Key, err)
		}
		if _, dup := r.byKey[e.Key]; dup {
			return nil, fmt.Errorf("duplicate entity key %q", e.Key)
		}
		if _, dup := r.byTable[e.DBConfig.TableName]; dup {
			return nil, fmt.Errorf("duplicate table name %q", e.DBConfig.TableName)
		}
		r.ordered = append(r.ordered, e)
		r.byKey[e.Key] = e
		r.byTable[e.DBConfig.TableName] = e
	}

	// Relations are declarative only, but a target that names no
	// registered entity is still a broken description.
	for _, e := range r.ordered {
		for _, rel := range e.Relations {
			if _, ok := r.byKey[rel.TargetEntityKey]; !ok {
				return nil, fmt.Errorf("entity %q: relation %q targets unknown entity %q",
					e.Key, rel.Key, rel.TargetEntityKey)
			}
		}
	}

	return r, nil
}

// GetEntity returns the entity with the given key, or nil.
func (r *Registry) GetEntity(key string) *Entity {
	return r.byKey[key]
}

// GetEntityByTable returns the entity mounted at the given table name, or nil.
func (r *Registry) GetEntityByTable(table string) *Entity {
	return r.byTable[table]
}

// Entities returns all entities in registration order.
func (r *Registry) Entities() []*Entity {
	return r.ordered
}

func validateEntity(e *Entity) error {
	if e.Key == "" {
		return fmt.Errorf("empty entity key")
	}
	if !identifierRe.MatchString(e.DBConfig.TableName) {
		return fmt.Errorf("invalid table name %q", e.DBConfig.TableName)
	}
	if len(e.Fields) == 0 {
		return fmt.Errorf("no fields")
	}

	keys := make(map[string]bool, len(e.Fields))
	columns := make(map[string]bool, len(e.Fields))
	for i := range e.Fields {
		f := &e.Fields[i]
		if f.Key == "" {
			return fmt.Errorf("field %d: empty key", i)
		}
		if keys[f.Key] {
			return fmt.Errorf("duplicate field key %q", f.Key)
		}
		keys[f.Key] = true

		col := f.DBConfig.ColumnName
		if !identifierRe.MatchString(col) {
			return fmt.Errorf("field %q: invalid column name %q", f.Key, col)
		}
		if columns[col] {
			return fmt.Errorf("duplicate column name %q", col)
		}
		columns[col] = true

		if err := validateInputKind(f); err != nil {
			return fmt.Errorf("field %q: %w", f.Key, err)
		}
	}

	if !columns["id"] {
		return fmt.Errorf("no field maps to the id column")
	}

	for _, idx := range e.DBConfig.Indexes {
		if len(idx.Columns) == 0 {
			return fmt.Errorf("composite index with no columns")
		}
		for _, col := range idx.Columns {
			if !columns[col] {
				return fmt.Errorf("composite index references unknown column %q", col)
			}
		}
	}

	relKeys := make(map[string]bool, len(e.Relations))
	for _, rel := range e.Relations {
		if relKeys[rel.Key] {
			return fmt.Errorf("duplicate relation key %q", rel.Key)
		}
		relKeys[rel.Key] = true
		switch rel.Kind {
		case ManyToOne, OneToOne, ManyToMany, OneToMany:
		default:
			return fmt.Errorf("relation %q: unknown kind %q", rel.Key, rel.Kind)
		}
	}

	return nil
}

func validateInputKind(f *Field) error {
	allowed, ok := inputKinds[f.DBConfig.Type]
	if !ok {
		return fmt.Errorf("unsupported type: %s", f.DBConfig.Type)
	}
	for _, kind := range allowed {
		if f.Input.Kind == kind {
			if kind == InputSelect || kind == InputMultiSelect {
				if len(f.Input.SelectOptions) == 0 {
					return fmt.Errorf("input kind %q requires select options", kind)
				}
			}
			return nil
		}
	}
	return fmt.Errorf("input kind %q is not valid for column type %q", f.Input.Kind, f.DBConfig.Type)
}
