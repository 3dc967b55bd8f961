package metadata

// Entity is the root declarative unit: one entity description drives the
// validation schema, the table definition, the REST routes and the UI
// descriptors. Instances are built once at startup and never mutated.
type Entity struct {
	Key       string     `json:"key"`
	DBConfig  DBConfig   `json:"db_config"`
	Display   Display    `json:"display"`
	Fields    []Field    `json:"fields"`
	Relations []Relation `json:"relations,omitempty"`
}

type DBConfig struct {
	TableName string  `json:"table_name"`
	Indexes   []Index `json:"indexes,omitempty"`
}

// Index declares a composite index over several columns.
type Index struct {
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
}

// Display carries the human-facing naming used by documentation tags and
// UI headers.
type Display struct {
	Singular    string `json:"singular"`
	Plural      string `json:"plural"`
	Description string `json:"description,omitempty"`
}

type RelationKind string

const (
	ManyToOne  RelationKind = "many-to-one"
	OneToOne   RelationKind = "one-to-one"
	ManyToMany RelationKind = "many-to-many"
	OneToMany  RelationKind = "one-to-many"
)

// Relation is declarative metadata only: no join or cascade behavior is
// attached to it anywhere in the engine.
type Relation struct {
	Key             string       `json:"key"`
	Kind            RelationKind `json:"kind"`
	TargetEntityKey string       `json:"target_entity_key"`
	TargetFieldKey  string       `json:"target_field_key"`
}

// GetField returns a pointer to the field with the given key, or nil.
func (e *Entity) GetField(key string) *Field {
	for i := range e.Fields {
		if e.Fields[i].Key == key {
			return &e.Fields[i]
		}
	}
	return nil
}

// GetFieldByColumn returns a pointer to the field with the given column
// name, or nil.
func (e *Entity) GetFieldByColumn(column string) *Field {
	for i := range e.Fields {
		if e.Fields[i].DBConfig.ColumnName == column {
			return &e.Fields[i]
		}
	}
	return nil
}

// HasColumn returns true if the entity has a field stored in the given column.
func (e *Entity) HasColumn(column string) bool {
	return e.GetFieldByColumn(column) != nil
}

// ColumnNames returns all column names in field declaration order.
func (e *Entity) ColumnNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.DBConfig.ColumnName
	}
	return names
}

// IDField returns the field stored in the "id" column. Every entity must
// declare one; the registry enforces this at construction time.
func (e *Entity) IDField() *Field {
	return e.GetFieldByColumn("id")
}
