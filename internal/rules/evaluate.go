// internal/rules/evaluate.go
package rules

import (
	"strings"

	"github.com/helios-ops/helios/internal/types"
)

/*
 * Condition tree evaluation.
 *
 * Evaluates a resolved tree (leaves and groups only) against a fact map.
 * ALL groups short-circuit on the first non-match, ANY groups on the first
 * match. Each leaf evaluated before a short-circuit emits a MatchEvent for
 * audit-log diagnostics.
 *
 * Failure semantics: a surviving named reference is an error (resolution
 * must run first). Operator failures degrade to false at the leaf: an
 * unknown operator name or type-mismatched comparison makes that leaf
 * non-matching, never aborts the evaluation.
 */

// EvalResult is the outcome of evaluating one tree against one fact map.
type EvalResult struct {
	Matched bool
	Events  []types.MatchEvent
}

// EvaluateGroup evaluates a resolved condition tree against facts using the
// given operator registry.
func EvaluateGroup(reg *OperatorRegistry, group types.ConditionGroup, facts types.FactMap) (EvalResult, error) {
	var events []types.MatchEvent
	matched, err := evalGroup(reg, group, facts, &events)
	if err != nil {
		return EvalResult{}, err
	}
	return EvalResult{Matched: matched, Events: events}, nil
}

func evalGroup(reg *OperatorRegistry, group types.ConditionGroup, facts types.FactMap, events *[]types.MatchEvent) (bool, error) {
	nodes, conjunction := group.Children()

	// An empty group matches vacuously; validation rejects empty trees at
	// the root, but substitution can legitimately produce empty subgroups.
	if len(nodes) == 0 {
		return true, nil
	}

	for _, node := range nodes {
		matched, err := evalNode(reg, node, facts, events)
		if err != nil {
			return false, err
		}
		if conjunction && !matched {
			return false, nil
		}
		if !conjunction && matched {
			return true, nil
		}
	}
	return conjunction, nil
}

func evalNode(reg *OperatorRegistry, node types.Node, facts types.FactMap, events *[]types.MatchEvent) (bool, error) {
	switch {
	case node.Leaf != nil:
		return evalLeaf(reg, *node.Leaf, facts, events), nil
	case node.Group != nil:
		return evalGroup(reg, *node.Group, facts, events)
	case node.Ref != nil:
		return false, types.ErrUnknownCondition
	default:
		return false, types.ErrInvalidNode
	}
}

func evalLeaf(reg *OperatorRegistry, cond types.Condition, facts types.FactMap, events *[]types.MatchEvent) bool {
	value, present := facts[cond.Fact]
	if present && cond.Path != "" {
		value, present = descendPath(value, cond.Path)
	}

	matched := false
	if fn, ok := reg.Lookup(cond.Operator); ok {
		// Null-check operators are meaningful for absent facts; everything
		// else treats a missing fact as nil and lets the operator decide.
		if !present {
			value = nil
		}
		matched = fn(value, cond.Value)
	}

	*events = append(*events, types.MatchEvent{
		Fact:     cond.Fact,
		Operator: cond.Operator,
		Expected: cond.Value,
		Actual:   value,
		Matched:  matched,
	})
	return matched
}

// descendPath walks a dot-delimited path into a map-valued fact.
func descendPath(value any, path string) (any, bool) {
	current := value
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
