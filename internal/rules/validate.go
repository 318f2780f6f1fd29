// internal/rules/validate.go
package rules

import (
	"context"
	"fmt"

	"github.com/helios-ops/helios/internal/types"
)

/*
 * Static validation of condition trees.
 *
 * A single depth-first traversal simultaneously:
 *   1. Counts leaf conditions (limit MaxConditionsPerRule)
 *   2. Computes maximum nesting depth (limit MaxNestingDepth, warning at
 *      WarnNestingDepth). Descending into a group adds 1. Expanding a named
 *      reference adds the referenced condition's own precomputed depth
 *      instead of re-walking its tree: O(1) per reference, so validation
 *      never recurses into shared subtrees. Depth composition is therefore
 *      additive (parent depth + referenced depth).
 *   3. Collects the transitive closure of referenced condition ids, using
 *      the cached closure on each referenced row.
 *   4. Detects reference cycles: a reference to the entity under validation
 *      (excludeID), a previously visited id, or any row whose cached closure
 *      contains excludeID is rejected immediately.
 *
 * This is the only admission point for condition trees. Every create/update
 * of a named condition or automation rule must pass through Validate; the
 * derived NestingDepth/ConditionCount/ReferencesConditions it returns are
 * persisted in place of anything the client supplied.
 */

// ConditionLookup resolves named conditions during validation and
// resolution. Implemented by the condition store.
type ConditionLookup interface {
	NamedConditionByName(ctx context.Context, orgID types.OrgID, name string) (*types.NamedCondition, error)
}

// ValidationResult is the full outcome of validating one condition tree.
// Errors make the tree unpersistable; warnings are advisory.
type ValidationResult struct {
	Valid                bool                `json:"valid"`
	Errors               []string            `json:"errors"`
	Warnings             []string            `json:"warnings"`
	NestingDepth         int                 `json:"nestingDepth"`
	ConditionCount       int                 `json:"conditionCount"`
	ReferencedConditions []types.ConditionID `json:"referencedConditions"`
}

type validator struct {
	ctx       context.Context
	lookup    ConditionLookup
	orgID     types.OrgID
	excludeID types.ConditionID

	errors   []string
	warnings []string
	leaves   int
	maxDepth int
	visited  map[types.ConditionID]bool
	closure  []types.ConditionID
}

// Validate statically analyzes a condition tree against the authoring
// invariants. excludeID is the id of the named condition being updated, if
// any, so self-references are caught; pass "" when validating a rule tree.
func Validate(ctx context.Context, lookup ConditionLookup, orgID types.OrgID, group types.ConditionGroup, excludeID types.ConditionID) ValidationResult {
	v := &validator{
		ctx:       ctx,
		lookup:    lookup,
		orgID:     orgID,
		excludeID: excludeID,
		visited:   make(map[types.ConditionID]bool),
	}

	depth := v.walkGroup(group, 1)
	if depth > v.maxDepth {
		v.maxDepth = depth
	}

	if v.leaves == 0 {
		v.errorf("condition tree has no conditions")
	}
	if v.leaves > types.MaxConditionsPerRule {
		v.errorf("condition tree has %d conditions, maximum is %d", v.leaves, types.MaxConditionsPerRule)
	}
	if v.maxDepth > types.MaxNestingDepth {
		v.errorf("nesting depth %d exceeds maximum of %d", v.maxDepth, types.MaxNestingDepth)
	} else if v.maxDepth >= types.WarnNestingDepth {
		v.warnf("nesting depth %d approaches the maximum of %d; consider flattening", v.maxDepth, types.MaxNestingDepth)
	}

	return ValidationResult{
		Valid:                len(v.errors) == 0,
		Errors:               v.errors,
		Warnings:             v.warnings,
		NestingDepth:         v.maxDepth,
		ConditionCount:       v.leaves,
		ReferencedConditions: v.closure,
	}
}

func (v *validator) errorf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) warnf(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

// walkGroup returns the maximum depth reached under this group, with the
// group itself at the given depth.
func (v *validator) walkGroup(group types.ConditionGroup, depth int) int {
	if len(group.All) > 0 && len(group.Any) > 0 {
		v.errorf("group populates both all and any; canonical form allows one")
	}

	max := depth
	nodes, _ := group.Children()
	for _, node := range nodes {
		if d := v.walkNode(node, depth); d > max {
			max = d
		}
	}
	return max
}

func (v *validator) walkNode(node types.Node, depth int) int {
	switch {
	case node.Leaf != nil:
		v.leaves++
		if node.Leaf.Fact == "" {
			v.errorf("condition is missing a fact name")
		}
		if node.Leaf.Operator == "" {
			v.errorf("condition on fact %q is missing an operator", node.Leaf.Fact)
		}
		return depth

	case node.Group != nil:
		return v.walkGroup(*node.Group, depth+1)

	case node.Ref != nil:
		return v.walkRef(*node.Ref, depth)

	default:
		v.errorf("condition node is empty")
		return depth
	}
}

// walkRef charges the referenced condition's cached depth and count against
// this tree's limits and runs cycle detection over the cached closure.
func (v *validator) walkRef(ref types.ConditionRef, depth int) int {
	named, err := v.lookup.NamedConditionByName(v.ctx, v.orgID, ref.Condition)
	if err != nil {
		v.errorf("referenced condition %q does not exist", ref.Condition)
		return depth
	}

	if named.ID == v.excludeID {
		v.errorf("condition %q cannot reference itself", ref.Condition)
		return depth
	}
	if v.visited[named.ID] {
		v.errorf("circular reference detected through condition %q", ref.Condition)
		return depth
	}
	v.visited[named.ID] = true
	v.closure = append(v.closure, named.ID)

	for _, id := range named.ReferencesConditions {
		if id == v.excludeID {
			v.errorf("circular reference detected: %q transitively references the condition under edit", ref.Condition)
			continue
		}
		if !v.visited[id] {
			v.visited[id] = true
			v.closure = append(v.closure, id)
		}
	}

	v.leaves += named.ConditionCount

	// Additive composition: the reference contributes the referenced
	// condition's own precomputed depth at the point of substitution.
	return depth + named.NestingDepth
}
