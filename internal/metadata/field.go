package metadata

// ColumnType is the closed set of abstract column types. The schema
// package maps each member to a validation rule and a storage column
// type; anything outside the set is a definition-time error.
type ColumnType string

const (
	TypeBoolean     ColumnType = "boolean"
	TypeChar        ColumnType = "char"
	TypeVarchar     ColumnType = "varchar"
	TypeText        ColumnType = "text"
	TypeSmallint    ColumnType = "smallint"
	TypeInteger     ColumnType = "integer"
	TypeFloat       ColumnType = "float"
	TypeDate        ColumnType = "date"
	TypeTimestamp   ColumnType = "timestamp"
	TypeTimestamptz ColumnType = "timestamptz"
	TypeJSONB       ColumnType = "jsonb"
	TypeUUID        ColumnType = "uuid"
)

// InputKind selects the widget the admin frontend renders for a field.
type InputKind string

const (
	InputText        InputKind = "text"
	InputTextarea    InputKind = "textarea"
	InputCheckbox    InputKind = "checkbox"
	InputSelect      InputKind = "select"
	InputMultiSelect InputKind = "multi-select"
	InputNumber      InputKind = "number"
	InputDate        InputKind = "date"
	InputJSON        InputKind = "json"
	InputUUID        InputKind = "uuid"
)

// Field describes one column/property of an entity.
type Field struct {
	Key      string          `json:"key"`
	DBConfig FieldDBConfig   `json:"db_config"`
	Input    InputOptions    `json:"input_options"`
	Save     *SaveOptions    `json:"save_options,omitempty"`
	Display  *DisplayOptions `json:"display_options,omitempty"`
}

type FieldDBConfig struct {
	ColumnName string     `json:"column_name"`
	Type       ColumnType `json:"type"`
	Nullable   bool       `json:"nullable,omitempty"`
	Unique     bool       `json:"unique,omitempty"`
	Indexed    bool       `json:"indexed,omitempty"`
}

type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type InputOptions struct {
	Kind          InputKind      `json:"kind"`
	Label         string         `json:"label"`
	Placeholder   string         `json:"placeholder,omitempty"`
	HelpText      string         `json:"help_text,omitempty"`
	ReadOnly      bool           `json:"read_only,omitempty"`
	Required      bool           `json:"required,omitempty"`
	Hidden        bool           `json:"hidden,omitempty"`
	SelectOptions []SelectOption `json:"select_options,omitempty"`
}

// TransformFunc normalizes a value after validation, before storage.
type TransformFunc func(value any) any

// SaveOptions attach write-side policy to a field. Trim is applied before
// validation so length checks see the trimmed form. Validators run after
// the type projection; Transform runs last.
type SaveOptions struct {
	Trim       bool          `json:"trim,omitempty"`
	Validators []Validator   `json:"validators,omitempty"`
	Transform  TransformFunc `json:"-"`
}

// FormatFunc renders a stored value for read-side display.
type FormatFunc func(value any) any

type DisplayOptions struct {
	Format FormatFunc `json:"-"`
}

// SelectValues returns the declared option values, for membership checks.
func (o InputOptions) SelectValues() []string {
	values := make([]string, len(o.SelectOptions))
	for i, opt := range o.SelectOptions {
		values[i] = opt.Value
	}
	return values
}

// SelectLabel returns the label for a stored option value, or ok=false
// when the value is not one of the declared options.
func (o InputOptions) SelectLabel(value string) (string, bool) {
	for _, opt := range o.SelectOptions {
		if opt.Value == value {
			return opt.Label, true
		}
	}
	return "", false
}
