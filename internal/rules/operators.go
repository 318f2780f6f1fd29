// internal/rules/operators.go
package rules

import (
	"reflect"
	"regexp"
	"strings"
)

/*
 * Operator registry and comparison logic.
 *
 * Every operator is a pure predicate (factValue, comparisonValue) -> bool,
 * registered by name in an OperatorRegistry. The evaluator dispatches through
 * the registry and never inspects operator names itself, so new operators are
 * addable without touching validation or evaluation (open registry, closed
 * evaluation core).
 *
 * Categories:
 *   - equal/notEqual: equality with numeric tolerance for float64/int mixing
 *   - greaterThan[Inclusive]/lessThan[Inclusive]: numeric ordering
 *   - in/notIn: membership against an array comparison value
 *   - contains/startsWith/endsWith/matchesRegex: string predicates
 *   - isEmpty/isNotEmpty/isNull/isNotNull: emptiness and null checks
 *   - isUnder/isNotUnder: hierarchy predicates over slash paths or
 *     ancestry arrays
 *
 * Failure semantics: operators never return errors. Malformed input (bad
 * regex, type mismatch) degrades to false because condition authors supply
 * dynamic values at authoring time and one broken leaf must not poison the
 * whole evaluation.
 */

// OperatorFunc is a pure comparison predicate.
type OperatorFunc func(factValue, comparisonValue any) bool

// OperatorRegistry maps operator names to predicates. Populated once at
// startup; per-organization engine instances clone it before registering
// custom operators.
type OperatorRegistry struct {
	ops map[string]OperatorFunc
}

// NewOperatorRegistry returns an empty registry.
func NewOperatorRegistry() *OperatorRegistry {
	return &OperatorRegistry{ops: make(map[string]OperatorFunc)}
}

// Register adds or replaces an operator by name.
func (r *OperatorRegistry) Register(name string, fn OperatorFunc) {
	r.ops[name] = fn
}

// Lookup returns the predicate for name.
func (r *OperatorRegistry) Lookup(name string) (OperatorFunc, bool) {
	fn, ok := r.ops[name]
	return fn, ok
}

// Names returns all registered operator names, unordered.
func (r *OperatorRegistry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	return names
}

// Clone returns an independent copy of the registry.
func (r *OperatorRegistry) Clone() *OperatorRegistry {
	out := NewOperatorRegistry()
	for name, fn := range r.ops {
		out.ops[name] = fn
	}
	return out
}

// DefaultOperators builds the built-in operator catalog.
func DefaultOperators() *OperatorRegistry {
	r := NewOperatorRegistry()

	r.Register("equal", compareEqual)
	r.Register("notEqual", func(a, b any) bool { return !compareEqual(a, b) })

	r.Register("greaterThan", numericCompare(func(c int) bool { return c > 0 }))
	r.Register("greaterThanInclusive", numericCompare(func(c int) bool { return c >= 0 }))
	r.Register("lessThan", numericCompare(func(c int) bool { return c < 0 }))
	r.Register("lessThanInclusive", numericCompare(func(c int) bool { return c <= 0 }))

	r.Register("in", compareIn)
	r.Register("notIn", func(a, b any) bool { return !compareIn(a, b) })

	r.Register("contains", stringPredicate(strings.Contains))
	r.Register("startsWith", stringPredicate(strings.HasPrefix))
	r.Register("endsWith", stringPredicate(strings.HasSuffix))
	r.Register("matchesRegex", compareRegex)

	r.Register("isEmpty", func(a, _ any) bool { return isEmpty(a) })
	r.Register("isNotEmpty", func(a, _ any) bool { return !isEmpty(a) })
	r.Register("isNull", func(a, _ any) bool { return a == nil })
	r.Register("isNotNull", func(a, _ any) bool { return a != nil })

	r.Register("isUnder", compareUnder)
	r.Register("isNotUnder", func(a, b any) bool { return !compareUnder(a, b) })

	return r
}

// compareEqual performs equality comparison with numeric type coercion.
// Handles float64/int/int64 mixing from JSON unmarshaling; falls back to
// reflect.DeepEqual for composite values.
func compareEqual(a, b any) bool {
	if na, nb, ok := asNumbers(a, b); ok {
		return na == nb
	}
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// numericCompare builds an ordering predicate from a three-way comparison
// check. Incomparable types never satisfy any ordering operator.
func numericCompare(check func(int) bool) OperatorFunc {
	return func(a, b any) bool {
		na, nb, ok := asNumbers(a, b)
		if !ok {
			return false
		}
		switch {
		case na < nb:
			return check(-1)
		case na > nb:
			return check(1)
		default:
			return check(0)
		}
	}
}

// asNumbers attempts to convert both values to float64 for numeric comparison.
func asNumbers(a, b any) (float64, float64, bool) {
	na, oka := toFloat64(a)
	nb, okb := toFloat64(b)
	return na, nb, oka && okb
}

// toFloat64 converts value to float64 if it's a numeric type.
// Handles float64, float32, int, int64 from JSON and database unmarshaling.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// compareIn checks if value exists in the comparison set using equality
// semantics. Accepts []any and []string comparison values.
func compareIn(value, set any) bool {
	switch arr := set.(type) {
	case []any:
		for _, elem := range arr {
			if compareEqual(value, elem) {
				return true
			}
		}
	case []string:
		for _, elem := range arr {
			if compareEqual(value, elem) {
				return true
			}
		}
	}
	return false
}

// stringPredicate lifts a string relation to an operator.
// Non-string operands never match.
func stringPredicate(rel func(s, sub string) bool) OperatorFunc {
	return func(a, b any) bool {
		vs, ok1 := a.(string)
		cs, ok2 := b.(string)
		if !ok1 || !ok2 {
			return false
		}
		return rel(vs, cs)
	}
}

// compareRegex matches the fact value against a pattern supplied at
// authoring time. Compilation failure evaluates to false, never panics.
func compareRegex(value, pattern any) bool {
	vs, ok1 := value.(string)
	ps, ok2 := pattern.(string)
	if !ok1 || !ok2 {
		return false
	}
	re, err := regexp.Compile(ps)
	if err != nil {
		return false
	}
	return re.MatchString(vs)
}

// isEmpty reports nil, empty string, and empty slice/map values.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

// compareUnder implements the hierarchy predicate. Two fact shapes:
//   - slash-delimited path: "/Eng/Platform" isUnder "/Eng" (segment-aware
//     prefix match, so "/Engineering" is not under "/Eng")
//   - ancestry array: membership of the comparison value in the list
func compareUnder(value, ancestor any) bool {
	switch v := value.(type) {
	case string:
		as, ok := ancestor.(string)
		if !ok || as == "" {
			return false
		}
		if v == as {
			return true
		}
		return strings.HasPrefix(v, strings.TrimSuffix(as, "/")+"/")
	case []any, []string:
		return compareIn(ancestor, v)
	default:
		return false
	}
}
