// Package entities declares the entity registry served by this
// application. Adding an entity here is the whole integration: schema,
// table, routes, docs and UI metadata all derive from the declaration.
package entities

import (
	"strings"

	"adminkit/internal/metadata"
)

// NewRegistry builds the application registry. Construction fails if any
// declaration is inconsistent, so a broken entity never reaches serving.
func NewRegistry() (*metadata.Registry, error) {
	return metadata.NewRegistry(users(), posts(), clients())
}

func idField() metadata.Field {
	return metadata.Field{
		Key: "id",
		DBConfig: metadata.FieldDBConfig{
			ColumnName: "id",
			Type:       metadata.TypeUUID,
		},
		Input: metadata.InputOptions{
			Kind:     metadata.InputUUID,
			Label:    "ID",
			ReadOnly: true,
		},
	}
}

func users() *metadata.Entity {
	return &metadata.Entity{
		Key: "users",
		DBConfig: metadata.DBConfig{
			TableName: "users",
		},
		Display: metadata.Display{
			Singular:    "User",
			Plural:      "Users",
			Description: "Application user accounts",
		},
		Fields: []metadata.Field{
			idField(),
			{
				Key: "name",
				DBConfig: metadata.FieldDBConfig{
					ColumnName: "name",
					Type:       metadata.TypeVarchar,
				},
				Input: metadata.InputOptions{
					Kind:        metadata.InputText,
					Label:       "Name",
					Placeholder: "Full name",
					Required:    true,
				},
				Save: &metadata.SaveOptions{
					Trim: true,
					Validators: []metadata.Validator{
						metadata.MinLength(2, "Name must be at least 2 characters"),
					},
				},
			},
			{
				Key: "email",
				DBConfig: metadata.FieldDBConfig{
					ColumnName: "email",
					Type:       metadata.TypeVarchar,
					Unique:     true,
				},
				Input: metadata.InputOptions{
					Kind:        metadata.InputText,
					Label:       "Email",
					Placeholder: "name@example.com",
					Required:    true,
				},
				Save: &metadata.SaveOptions{
					Trim: true,
					Validators: []metadata.Validator{
						metadata.Pattern(`^[^@\s]+@[^@\s]+\.[^@\s]+$`, "Invalid email address"),
					},
					Transform: func(v any) any {
						if s, ok := v.(string); ok {
							return strings.ToLower(s)
						}
						return v
					},
				},
			},
			{
				Key: "role",
				DBConfig: metadata.FieldDBConfig{
					ColumnName: "role",
					Type:       metadata.TypeVarchar,
					Indexed:    true,
				},
				Input: metadata.InputOptions{
					Kind:  metadata.InputSelect,
					Label: "Role",
					SelectOptions: []metadata.SelectOption{
						{Label: "Administrator", Value: "admin"},
						{Label: "User", Value: "user"},
						{Label: "Guest", Value: "guest"},
					},
				},
				Save: &metadata.SaveOptions{
					Validators: []metadata.Validator{
						metadata.OneOf([]string{"admin", "user", "guest"}, ""),
					},
				},
			},
			{
				Key: "is_active",
				DBConfig: metadata.FieldDBConfig{
					ColumnName: "is_active",
					Type:       metadata.TypeBoolean,
				},
				Input: metadata.InputOptions{
					Kind:  metadata.InputCheckbox,
					Label: "Active",
				},
			},
		},
	}
}

func posts() *metadata.Entity {
	return &metadata.Entity{
		Key: "posts",
		DBConfig: metadata.DBConfig{
			TableName: "posts",
			Indexes: []metadata.Index{
				{Columns: []string{"author_id", "is_published"}},
			},
		},
		Display: metadata.Display{
			Singular:    "Post",
			Plural:      "Posts",
			Description: "Authored content",
		},
		Fields: []metadata.Field{
			idField(),
			{
				Key: "title",
				DBConfig: metadata.FieldDBConfig{
					ColumnName: "title",
					Type:       metadata.TypeVarchar,
				},
				Input: metadata.InputOptions{
					Kind:     metadata.InputText,
					Label:    "Title",
					Required: true,
				},
				Save: &metadata.SaveOptions{
					Trim: true,
					Validators: []metadata.Validator{
						metadata.MinLength(5, "Title must be at least 5 characters"),
					},
				},
			},
			{
				Key: "content",
				DBConfig: metadata.FieldDBConfig{
					ColumnName: "content",
					Type:       metadata.TypeText,
				},
				Input: metadata.InputOptions{
					Kind:     metadata.InputTextarea,
					Label:    "Content",
					Required: true,
				},
			},
			{
				Key: "author_id",
				DBConfig: metadata.FieldDBConfig{
					ColumnName: "author_id",
					Type:       metadata.TypeUUID,
					Indexed:    true,
				},
				Input: metadata.InputOptions{
					Kind:  metadata.InputUUID,
					Label: "Author",
				},
			},
			{
				Key: "is_published",
				DBConfig: metadata.FieldDBConfig{
					ColumnName: "is_published",
					Type:       metadata.TypeBoolean,
				},
				Input: metadata.InputOptions{
					Kind:  metadata.InputCheckbox,
					Label: "Published",
				},
			},
		},
		Relations: []metadata.Relation{
			{
				Key:             "author",
				Kind:            metadata.ManyToOne,
				TargetEntityKey: "users",
				TargetFieldKey:  "id",
			},
		},
	}
}

func clients() *metadata.Entity {
	return &metadata.Entity{
		Key: "clients",
		DBConfig: metadata.DBConfig{
			TableName: "clients",
		},
		Display: metadata.Display{
			Singular:    "Client",
			Plural:      "Clients",
			Description: "Client organizations",
		},
		Fields: []metadata.Field{
			idField(),
			{
				Key: "name",
				DBConfig: metadata.FieldDBConfig{
					ColumnName: "name",
					Type:       metadata.TypeVarchar,
				},
				Input: metadata.InputOptions{
					Kind:     metadata.InputText,
					Label:    "Name",
					Required: true,
				},
				Save: &metadata.SaveOptions{
					Trim: true,
					Validators: []metadata.Validator{
						metadata.MinLength(3, "Name must be at least 3 characters"),
					},
				},
			},
			{
				Key: "status",
				DBConfig: metadata.FieldDBConfig{
					ColumnName: "status",
					Type:       metadata.TypeVarchar,
					Indexed:    true,
				},
				Input: metadata.InputOptions{
					Kind:  metadata.InputSelect,
					Label: "Status",
					SelectOptions: []metadata.SelectOption{
						{Label: "Active", Value: "active"},
						{Label: "Inactive", Value: "inactive"},
					},
				},
				Save: &metadata.SaveOptions{
					Validators: []metadata.Validator{
						metadata.OneOf([]string{"active", "inactive"}, "Invalid status"),
					},
				},
			},
			{
				Key: "address",
				DBConfig: metadata.FieldDBConfig{
					ColumnName: "address",
					Type:       metadata.TypeVarchar,
					Nullable:   true,
				},
				Input: metadata.InputOptions{
					Kind:  metadata.InputText,
					Label: "Address",
				},
				Save: &metadata.SaveOptions{Trim: true},
			},
			{
				Key: "files",
				DBConfig: metadata.FieldDBConfig{
					ColumnName: "files",
					Type:       metadata.TypeJSONB,
					Nullable:   true,
				},
				Input: metadata.InputOptions{
					Kind:     metadata.InputJSON,
					Label:    "Files",
					HelpText: "Arbitrary JSON attachment metadata",
				},
			},
		},
	}
}
