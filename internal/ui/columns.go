// Package ui derives render metadata for the admin frontend: table
// column descriptors and form field descriptors, plus the meta
// endpoints that serve them.
package ui

import (
	"adminkit/internal/metadata"
)

// ColumnKind tells the frontend how to render cells in a column.
type ColumnKind string

const (
	ColumnText    ColumnKind = "text"
	ColumnBoolean ColumnKind = "boolean"
	ColumnSelect  ColumnKind = "select"
	ColumnActions ColumnKind = "actions"
)

// Column describes one table column of the list view.
type Column struct {
	Key    string     `json:"key"`
	Header string     `json:"header"`
	Kind   ColumnKind `json:"kind"`

	// Labels maps stored option values to display labels for select
	// columns.
	Labels map[string]string `json:"labels,omitempty"`

	// Actions lists the row operations for the trailing actions column.
	Actions []string `json:"actions,omitempty"`

	field *metadata.Field
}

// Columns returns one descriptor per visible field, in declaration
// order, followed by the trailing actions column. Hidden fields never
// reach the table.
func Columns(entity *metadata.Entity) []Column {
	var cols []Column
	for i := range entity.Fields {
		f := &entity.Fields[i]
		if f.Input.Hidden {
			continue
		}
		col := Column{
			Key:    f.DBConfig.ColumnName,
			Header: f.Input.Label,
			Kind:   ColumnText,
			field:  f,
		}
		switch f.Input.Kind {
		case metadata.InputCheckbox:
			col.Kind = ColumnBoolean
		case metadata.InputSelect:
			col.Kind = ColumnSelect
			col.Labels = make(map[string]string, len(f.Input.SelectOptions))
			for _, opt := range f.Input.SelectOptions {
				col.Labels[opt.Value] = opt.Label
			}
		}
		cols = append(cols, col)
	}

	cols = append(cols, Column{
		Key:     "_actions",
		Header:  "Actions",
		Kind:    ColumnActions,
		Actions: []string{"edit", "delete"},
	})
	return cols
}

// RenderCell projects a stored value into its display form for one
// column. Booleans become Yes/No, select values are replaced by their
// labels, and a custom display formatter wins over both.
func RenderCell(col Column, value any) any {
	if col.field != nil && col.field.Display != nil && col.field.Display.Format != nil {
		return col.field.Display.Format(value)
	}
	switch col.Kind {
	case ColumnBoolean:
		if b, ok := value.(bool); ok {
			if b {
				return "Yes"
			}
			return "No"
		}
	case ColumnSelect:
		if s, ok := value.(string); ok {
			if label, ok := col.Labels[s]; ok {
				return label
			}
		}
	}
	return value
}
