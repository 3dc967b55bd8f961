package ui

import (
	"fmt"

	"adminkit/internal/metadata"
)

// Widget is the form control the frontend renders for a field.
type Widget string

const (
	WidgetText        Widget = "text"
	WidgetTextarea    Widget = "textarea"
	WidgetCheckbox    Widget = "checkbox"
	WidgetSelect      Widget = "select"
	WidgetMultiSelect Widget = "multi-select"
	WidgetNumber      Widget = "number"
	WidgetDate        Widget = "date"
	WidgetJSON        Widget = "json"
)

// FormField describes one editable control of the create/edit form.
type FormField struct {
	Key         string                  `json:"key"`
	Label       string                  `json:"label"`
	Widget      Widget                  `json:"widget"`
	Placeholder string                  `json:"placeholder,omitempty"`
	HelpText    string                  `json:"help_text,omitempty"`
	Required    bool                    `json:"required,omitempty"`
	Options     []metadata.SelectOption `json:"options,omitempty"`
}

// FormFields returns one descriptor per editable field, in declaration
// order. Hidden and read-only fields are excluded: the form never
// offers what the write path would reject.
func FormFields(entity *metadata.Entity) ([]FormField, error) {
	var fields []FormField
	for i := range entity.Fields {
		f := &entity.Fields[i]
		if f.Input.Hidden || f.Input.ReadOnly {
			continue
		}
		widget, err := widgetFor(f.Input.Kind)
		if err != nil {
			return nil, fmt.Errorf("entity %q field %q: %w", entity.Key, f.Key, err)
		}
		ff := FormField{
			Key:         f.DBConfig.ColumnName,
			Label:       f.Input.Label,
			Widget:      widget,
			Placeholder: f.Input.Placeholder,
			HelpText:    f.Input.HelpText,
			Required:    !f.DBConfig.Nullable,
		}
		if len(f.Input.SelectOptions) > 0 {
			ff.Options = f.Input.SelectOptions
		}
		fields = append(fields, ff)
	}
	return fields, nil
}

func widgetFor(kind metadata.InputKind) (Widget, error) {
	switch kind {
	case metadata.InputText, metadata.InputUUID:
		return WidgetText, nil
	case metadata.InputTextarea:
		return WidgetTextarea, nil
	case metadata.InputCheckbox:
		return WidgetCheckbox, nil
	case metadata.InputSelect:
		return WidgetSelect, nil
	case metadata.InputMultiSelect:
		return WidgetMultiSelect, nil
	case metadata.InputNumber:
		return WidgetNumber, nil
	case metadata.InputDate:
		return WidgetDate, nil
	case metadata.InputJSON:
		return WidgetJSON, nil
	default:
		return "", fmt.Errorf("no widget for input kind %q", kind)
	}
}
