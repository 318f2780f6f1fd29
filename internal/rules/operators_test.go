// internal/rules/operators_test.go
package rules

import (
	"testing"
)

func TestOperators(t *testing.T) {
	tests := []struct {
		name     string
		operator string
		factVal  any
		compVal  any
		want     bool
	}{
		// equal / notEqual
		{name: "equal: string match", operator: "equal", factVal: "Engineering", compVal: "Engineering", want: true},
		{name: "equal: string mismatch", operator: "equal", factVal: "Sales", compVal: "Engineering", want: false},
		{name: "equal: int vs float64", operator: "equal", factVal: 42, compVal: 42.0, want: true},
		{name: "equal: int64 vs int", operator: "equal", factVal: int64(7), compVal: 7, want: true},
		{name: "equal: nil vs nil", operator: "equal", factVal: nil, compVal: nil, want: true},
		{name: "equal: nil vs value", operator: "equal", factVal: nil, compVal: "x", want: false},
		{name: "equal: bool match", operator: "equal", factVal: true, compVal: true, want: true},
		{name: "notEqual: mismatch", operator: "notEqual", factVal: "a", compVal: "b", want: true},
		{name: "notEqual: match", operator: "notEqual", factVal: "a", compVal: "a", want: false},

		// numeric ordering
		{name: "greaterThan: true", operator: "greaterThan", factVal: 10.0, compVal: 5.0, want: true},
		{name: "greaterThan: equal is false", operator: "greaterThan", factVal: 5.0, compVal: 5.0, want: false},
		{name: "greaterThanInclusive: equal", operator: "greaterThanInclusive", factVal: 730.0, compVal: 730, want: true},
		{name: "greaterThanInclusive: below", operator: "greaterThanInclusive", factVal: 100.0, compVal: 730, want: false},
		{name: "lessThan: true", operator: "lessThan", factVal: 3, compVal: 5, want: true},
		{name: "lessThanInclusive: equal", operator: "lessThanInclusive", factVal: 5, compVal: 5, want: true},
		{name: "greaterThan: non-numeric fact", operator: "greaterThan", factVal: "ten", compVal: 5, want: false},
		{name: "greaterThan: non-numeric comparison", operator: "greaterThan", factVal: 10, compVal: "five", want: false},

		// in / notIn
		{name: "in: []any membership", operator: "in", factVal: "contractor", compVal: []any{"employee", "contractor"}, want: true},
		{name: "in: []string membership", operator: "in", factVal: "employee", compVal: []string{"employee", "contractor"}, want: true},
		{name: "in: absent", operator: "in", factVal: "intern", compVal: []any{"employee", "contractor"}, want: false},
		{name: "in: numeric coercion inside set", operator: "in", factVal: 3, compVal: []any{1.0, 2.0, 3.0}, want: true},
		{name: "in: non-array comparison value", operator: "in", factVal: "x", compVal: "x", want: false},
		{name: "notIn: absent", operator: "notIn", factVal: "intern", compVal: []any{"employee"}, want: true},

		// string predicates
		{name: "contains: substring", operator: "contains", factVal: "Senior Engineer", compVal: "Engineer", want: true},
		{name: "contains: missing", operator: "contains", factVal: "Manager", compVal: "Engineer", want: false},
		{name: "contains: non-string fact", operator: "contains", factVal: 42, compVal: "4", want: false},
		{name: "startsWith: prefix", operator: "startsWith", factVal: "eng-platform", compVal: "eng-", want: true},
		{name: "endsWith: suffix", operator: "endsWith", factVal: "alice@example.com", compVal: "@example.com", want: true},
		{name: "matchesRegex: match", operator: "matchesRegex", factVal: "CC-1042", compVal: `^CC-\d+$`, want: true},
		{name: "matchesRegex: no match", operator: "matchesRegex", factVal: "1042", compVal: `^CC-\d+$`, want: false},
		{name: "matchesRegex: invalid pattern is false", operator: "matchesRegex", factVal: "anything", compVal: "([", want: false},

		// emptiness / null
		{name: "isEmpty: empty string", operator: "isEmpty", factVal: "", compVal: nil, want: true},
		{name: "isEmpty: nil", operator: "isEmpty", factVal: nil, compVal: nil, want: true},
		{name: "isEmpty: empty slice", operator: "isEmpty", factVal: []any{}, compVal: nil, want: true},
		{name: "isEmpty: populated", operator: "isEmpty", factVal: "x", compVal: nil, want: false},
		{name: "isNotEmpty: populated", operator: "isNotEmpty", factVal: "x", compVal: nil, want: true},
		{name: "isNull: nil", operator: "isNull", factVal: nil, compVal: nil, want: true},
		{name: "isNull: empty string is not null", operator: "isNull", factVal: "", compVal: nil, want: false},
		{name: "isNotNull: value", operator: "isNotNull", factVal: 0, compVal: nil, want: true},

		// hierarchy
		{name: "isUnder: path descendant", operator: "isUnder", factVal: "/Engineering/Platform", compVal: "/Engineering", want: true},
		{name: "isUnder: unrelated path", operator: "isUnder", factVal: "/Sales", compVal: "/Engineering", want: false},
		{name: "isUnder: segment-aware prefix", operator: "isUnder", factVal: "/Engineering", compVal: "/Eng", want: false},
		{name: "isUnder: self path", operator: "isUnder", factVal: "/Engineering", compVal: "/Engineering", want: true},
		{name: "isUnder: ancestry array membership", operator: "isUnder", factVal: []any{"dept-a", "dept-b"}, compVal: "dept-a", want: true},
		{name: "isUnder: ancestry array absent", operator: "isUnder", factVal: []any{"dept-a"}, compVal: "dept-c", want: false},
		{name: "isUnder: []string ancestry", operator: "isUnder", factVal: []string{"dept-a", "dept-b"}, compVal: "dept-b", want: true},
		{name: "isUnder: non-path non-array fact", operator: "isUnder", factVal: 7, compVal: "/Engineering", want: false},
		{name: "isNotUnder: unrelated path", operator: "isNotUnder", factVal: "/Sales/EMEA", compVal: "/Engineering", want: true},
	}

	reg := DefaultOperators()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, ok := reg.Lookup(tt.operator)
			if !ok {
				t.Fatalf("Lookup(%q) = false, want operator registered", tt.operator)
			}
			if got := fn(tt.factVal, tt.compVal); got != tt.want {
				t.Errorf("%s(%v, %v) = %v, want %v", tt.operator, tt.factVal, tt.compVal, got, tt.want)
			}
		})
	}
}

func TestDefaultOperators_Catalog(t *testing.T) {
	reg := DefaultOperators()
	expected := []string{
		"equal", "notEqual",
		"greaterThan", "greaterThanInclusive", "lessThan", "lessThanInclusive",
		"in", "notIn",
		"contains", "startsWith", "endsWith", "matchesRegex",
		"isEmpty", "isNotEmpty", "isNull", "isNotNull",
		"isUnder", "isNotUnder",
	}
	for _, name := range expected {
		if _, ok := reg.Lookup(name); !ok {
			t.Errorf("Lookup(%q) = false, want registered", name)
		}
	}
	if got := len(reg.Names()); got != len(expected) {
		t.Errorf("len(Names()) = %d, want %d", got, len(expected))
	}
}

func TestOperatorRegistry_Clone(t *testing.T) {
	base := DefaultOperators()
	clone := base.Clone()

	clone.Register("alwaysTrue", func(_, _ any) bool { return true })

	if _, ok := clone.Lookup("alwaysTrue"); !ok {
		t.Fatalf("clone Lookup(alwaysTrue) = false, want true")
	}
	if _, ok := base.Lookup("alwaysTrue"); ok {
		t.Errorf("base Lookup(alwaysTrue) = true, want clone isolation")
	}
}
