// Package schema derives every artifact the admin backend needs from an
// entity description: validation schemas, table definitions and route
// descriptors. All derivation happens once at startup; an entity
// description the generators cannot handle aborts the process rather
// than surfacing at request time.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"adminkit/internal/metadata"
)

// ErrUnsupportedType reports an abstract column type outside the closed
// set. This is a definition-time contract violation.
var ErrUnsupportedType = errors.New("unsupported type")

// CheckFunc is the validation projection of one abstract column type.
// It verifies a JSON-decoded value and returns its normalized form (the
// value itself for most types, the canonical JSON encoding for jsonb).
type CheckFunc func(value any) (any, error)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ValidationFor maps an abstract column type to its validation projection.
func ValidationFor(t metadata.ColumnType) (CheckFunc, error) {
	switch t {
	case metadata.TypeChar, metadata.TypeVarchar, metadata.TypeText:
		return checkString, nil
	case metadata.TypeSmallint, metadata.TypeInteger, metadata.TypeFloat:
		return checkNumber, nil
	case metadata.TypeBoolean:
		return checkBoolean, nil
	case metadata.TypeDate, metadata.TypeTimestamp, metadata.TypeTimestamptz:
		return checkDate, nil
	case metadata.TypeUUID:
		return checkUUID, nil
	case metadata.TypeJSONB:
		return canonicalizeJSON, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

func checkString(v any) (any, error) {
	if _, ok := v.(string); !ok {
		return nil, fmt.Errorf("expected a string, got %T", v)
	}
	return v, nil
}

func checkNumber(v any) (any, error) {
	switch v.(type) {
	case float64, float32, int, int64, int32:
		return v, nil
	default:
		return nil, fmt.Errorf("expected a number, got %T", v)
	}
}

func checkBoolean(v any) (any, error) {
	if _, ok := v.(bool); !ok {
		return nil, fmt.Errorf("expected a boolean, got %T", v)
	}
	return v, nil
}

func checkDate(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected a date string, got %T", v)
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("invalid date format")
}

func checkUUID(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected a uuid string, got %T", v)
	}
	if _, err := uuid.Parse(s); err != nil {
		return nil, fmt.Errorf("invalid uuid")
	}
	return v, nil
}

// canonicalizeJSON accepts any JSON value and normalizes it to its
// canonical string encoding, which is what the jsonb column stores.
func canonicalizeJSON(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON-encodable: %w", err)
	}
	return string(b), nil
}
