package metadata

// ValidatorKind tags the variant of a field validator. All kinds except
// "custom" are declarative and serializable; "custom" carries an injected
// predicate for policies that cannot be expressed declaratively.
type ValidatorKind string

const (
	ValidatorMinLength  ValidatorKind = "min_length"
	ValidatorMaxLength  ValidatorKind = "max_length"
	ValidatorOneOf      ValidatorKind = "one_of"
	ValidatorPattern    ValidatorKind = "pattern"
	ValidatorExpression ValidatorKind = "expression"
	ValidatorCustom     ValidatorKind = "custom"
)

// ValidateFunc is the stable signature for custom predicates: return a
// non-nil error to reject the value. The error message is surfaced to the
// client verbatim.
type ValidateFunc func(value any) error

// Validator is one write-side validation rule for a field.
//
//   - min_length / max_length use Limit
//   - one_of uses Values
//   - pattern uses Pattern (Go regexp, compiled at schema generation)
//   - expression uses Expression, an expr-lang program over the single
//     variable "value" that must evaluate to true for valid input
//   - custom uses Func
//
// Message overrides the default violation message for the kind.
type Validator struct {
	Kind       ValidatorKind `json:"kind"`
	Limit      int           `json:"limit,omitempty"`
	Values     []string      `json:"values,omitempty"`
	Pattern    string        `json:"pattern,omitempty"`
	Expression string        `json:"expression,omitempty"`
	Message    string        `json:"message,omitempty"`
	Func       ValidateFunc  `json:"-"`
}

// MinLength rejects strings shorter than n runes.
func MinLength(n int, message string) Validator {
	return Validator{Kind: ValidatorMinLength, Limit: n, Message: message}
}

// MaxLength rejects strings longer than n runes.
func MaxLength(n int, message string) Validator {
	return Validator{Kind: ValidatorMaxLength, Limit: n, Message: message}
}

// OneOf rejects values outside the given set.
func OneOf(values []string, message string) Validator {
	return Validator{Kind: ValidatorOneOf, Values: values, Message: message}
}

// Pattern rejects strings not matching the regular expression.
func Pattern(pattern, message string) Validator {
	return Validator{Kind: ValidatorPattern, Pattern: pattern, Message: message}
}

// Expression rejects values for which the expr program evaluates to false.
func Expression(program, message string) Validator {
	return Validator{Kind: ValidatorExpression, Expression: program, Message: message}
}

// Custom wraps an injected predicate.
func Custom(fn ValidateFunc) Validator {
	return Validator{Kind: ValidatorCustom, Func: fn}
}
