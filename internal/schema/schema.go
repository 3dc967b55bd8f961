package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"adminkit/internal/metadata"
)

// Violation is one failed validation rule. Message is what the client
// sees; custom validator messages pass through verbatim.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// JoinViolations renders all violation messages as a single client-facing
// string.
func JoinViolations(violations []Violation) string {
	msgs := make([]string, len(violations))
	for i, v := range violations {
		msgs[i] = v.Message
	}
	return "Invalid input: " + strings.Join(msgs, ", ")
}

// EntitySchema is the validation artifact for one entity. Full requires
// every non-nullable writable field (create), Partial makes every field
// optional (update, list-query filtering), IDOnly validates a single
// identifier. The same instance backs wire validation and documentation.
type EntitySchema struct {
	Entity  *metadata.Entity
	Full    *ObjectSchema
	Partial *ObjectSchema
	IDOnly  IDSchema
}

// ObjectSchema validates a JSON object payload against per-column rules.
type ObjectSchema struct {
	entity     *metadata.Entity
	rules      map[string]*FieldRule // keyed by column name
	requireAll bool
}

// FieldRule is the compiled validation pipeline for one field: trim, the
// null/required policy, the type projection, then the field's validators
// and transform.
type FieldRule struct {
	Column   string
	Label    string
	Nullable bool
	Required bool

	trim       bool
	check      CheckFunc
	validators []compiledValidator
	transform  metadata.TransformFunc
}

type compiledValidator struct {
	check func(value any) error
}

// Generate derives the schema set for an entity. Errors are
// definition-time failures (unsupported column type, bad pattern or
// expression) and must abort startup.
func Generate(entity *metadata.Entity) (*EntitySchema, error) {
	rules := make(map[string]*FieldRule, len(entity.Fields))
	for i := range entity.Fields {
		f := &entity.Fields[i]
		rule, err := compileFieldRule(f)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		rules[f.DBConfig.ColumnName] = rule
	}

	return &EntitySchema{
		Entity:  entity,
		Full:    &ObjectSchema{entity: entity, rules: rules, requireAll: true},
		Partial: &ObjectSchema{entity: entity, rules: rules},
		IDOnly:  IDSchema{},
	}, nil
}

func compileFieldRule(f *metadata.Field) (*FieldRule, error) {
	check, err := ValidationFor(f.DBConfig.Type)
	if err != nil {
		return nil, err
	}

	rule := &FieldRule{
		Column:   f.DBConfig.ColumnName,
		Label:    f.Input.Label,
		Nullable: f.DBConfig.Nullable,
		Required: f.Input.Required,
		check:    check,
	}

	if f.Save != nil {
		rule.trim = f.Save.Trim
		rule.transform = f.Save.Transform
		for _, v := range f.Save.Validators {
			cv, err := compileValidator(f, v)
			if err != nil {
				return nil, err
			}
			rule.validators = append(rule.validators, cv)
		}
	}

	return rule, nil
}

func compileValidator(f *metadata.Field, v metadata.Validator) (compiledValidator, error) {
	label := f.Input.Label
	message := func(fallback string) string {
		if v.Message != "" {
			return v.Message
		}
		return fallback
	}

	switch v.Kind {
	case metadata.ValidatorMinLength:
		limit := v.Limit
		msg := message(fmt.Sprintf("%s must be at least %d characters", label, limit))
		return compiledValidator{check: func(value any) error {
			if s, ok := value.(string); ok && utf8.RuneCountInString(s) < limit {
				return fmt.Errorf("%s", msg)
			}
			return nil
		}}, nil

	case metadata.ValidatorMaxLength:
		limit := v.Limit
		msg := message(fmt.Sprintf("%s must be at most %d characters", label, limit))
		return compiledValidator{check: func(value any) error {
			if s, ok := value.(string); ok && utf8.RuneCountInString(s) > limit {
				return fmt.Errorf("%s", msg)
			}
			return nil
		}}, nil

	case metadata.ValidatorOneOf:
		allowed := make(map[string]bool, len(v.Values))
		for _, val := range v.Values {
			allowed[val] = true
		}
		msg := message(fmt.Sprintf("%s must be one of: %s", label, strings.Join(v.Values, ", ")))
		return compiledValidator{check: func(value any) error {
			if s, ok := value.(string); ok && !allowed[s] {
				return fmt.Errorf("%s", msg)
			}
			return nil
		}}, nil

	case metadata.ValidatorPattern:
		re, err := regexp.Compile(v.Pattern)
		if err != nil {
			return compiledValidator{}, fmt.Errorf("invalid pattern %q: %w", v.Pattern, err)
		}
		msg := message(fmt.Sprintf("%s has an invalid format", label))
		return compiledValidator{check: func(value any) error {
			if s, ok := value.(string); ok && !re.MatchString(s) {
				return fmt.Errorf("%s", msg)
			}
			return nil
		}}, nil

	case metadata.ValidatorExpression:
		prog, err := expr.Compile(v.Expression, expr.AsBool())
		if err != nil {
			return compiledValidator{}, fmt.Errorf("invalid expression %q: %w", v.Expression, err)
		}
		msg := message(fmt.Sprintf("%s failed validation", label))
		return compiledValidator{check: func(value any) error {
			ok, err := runBoolProgram(prog, value)
			if err != nil {
				return fmt.Errorf("%s", msg)
			}
			if !ok {
				return fmt.Errorf("%s", msg)
			}
			return nil
		}}, nil

	case metadata.ValidatorCustom:
		if v.Func == nil {
			return compiledValidator{}, fmt.Errorf("custom validator without a function")
		}
		fn := v.Func
		override := v.Message
		return compiledValidator{check: func(value any) error {
			if err := fn(value); err != nil {
				if override != "" {
					return fmt.Errorf("%s", override)
				}
				return err
			}
			return nil
		}}, nil

	default:
		return compiledValidator{}, fmt.Errorf("unknown validator kind %q", v.Kind)
	}
}

func runBoolProgram(prog *vm.Program, value any) (bool, error) {
	out, err := expr.Run(prog, map[string]any{"value": value})
	if err != nil {
		return false, err
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("expression did not return a boolean")
	}
	return ok, nil
}

// Validate checks a payload and returns its normalized form (trimmed,
// transformed, jsonb canonicalized) together with all violations found.
// Unknown keys are violations: the payload shape must match the entity.
func (s *ObjectSchema) Validate(payload map[string]any) (map[string]any, []Violation) {
	var violations []Violation
	normalized := make(map[string]any, len(payload))

	for i := range s.entity.Fields {
		f := &s.entity.Fields[i]
		column := f.DBConfig.ColumnName
		rule := s.rules[column]

		value, present := payload[column]
		if !present {
			if s.requireAll && requiredOnCreate(f) {
				violations = append(violations, Violation{
					Field:   column,
					Message: fmt.Sprintf("%s is required", rule.Label),
				})
			}
			continue
		}

		norm, err := rule.Validate(value)
		if err != nil {
			violations = append(violations, Violation{Field: column, Message: err.Error()})
			continue
		}
		normalized[column] = norm
	}

	var unknown []string
	for key := range payload {
		if _, ok := s.rules[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		violations = append(violations, Violation{
			Field:   key,
			Message: fmt.Sprintf("Unknown field: %s", key),
		})
	}

	if len(violations) > 0 {
		return nil, violations
	}
	return normalized, nil
}

// requiredOnCreate decides whether the full schema demands a field. The
// id column is exempt only when the server can assign it, which it does
// for uuid ids alone; any other id type must come from the client.
func requiredOnCreate(f *metadata.Field) bool {
	if f.DBConfig.Nullable {
		return false
	}
	if f.DBConfig.ColumnName == "id" {
		return f.DBConfig.Type != metadata.TypeUUID
	}
	return !f.Input.ReadOnly
}

// Rule returns the compiled rule for a column, or nil.
func (s *ObjectSchema) Rule(column string) *FieldRule {
	return s.rules[column]
}

// Validate runs the full pipeline for a single value. Trim happens before
// validation so length checks see the trimmed form; the transform runs
// last, after every check passed.
func (r *FieldRule) Validate(value any) (any, error) {
	if value == nil {
		if !r.Nullable {
			return nil, fmt.Errorf("%s must not be null", r.Label)
		}
		return nil, nil
	}

	if r.trim {
		if s, ok := value.(string); ok {
			value = strings.TrimSpace(s)
		}
	}

	if r.Required {
		if s, ok := value.(string); ok && s == "" {
			return nil, fmt.Errorf("%s must not be empty", r.Label)
		}
	}

	norm, err := r.check(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", r.Label, err)
	}
	value = norm

	for _, v := range r.validators {
		if err := v.check(value); err != nil {
			return nil, err
		}
	}

	if r.transform != nil {
		value = r.transform(value)
	}

	return value, nil
}

// IDSchema validates a single identifier string.
type IDSchema struct{}

// Validate trims the identifier and rejects an empty result.
func (IDSchema) Validate(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("id must not be empty")
	}
	return id, nil
}
