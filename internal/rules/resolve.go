// internal/rules/resolve.go
package rules

import (
	"context"
	"fmt"

	"github.com/helios-ops/helios/internal/types"
)

/*
 * Named-condition reference resolution.
 *
 * Rewrites a condition tree by substituting every named reference with the
 * referenced condition's own tree, recursively, producing a tree of only
 * leaves and groups ready for evaluation.
 *
 * An unresolvable name is a hard error, not a silent skip: a rule whose
 * reference dangles (the condition was deleted out from under it, or the row
 * is corrupt) is broken and must surface to the caller. Recursion is bounded
 * by MaxResolveDepth as a terminal safeguard; validated trees cannot cycle,
 * but resolution works on whatever the store returns.
 */

// ResolveReferences expands every named reference in group into its
// underlying tree. The input is not mutated; the result is a deep copy.
func ResolveReferences(ctx context.Context, lookup ConditionLookup, orgID types.OrgID, group types.ConditionGroup) (types.ConditionGroup, error) {
	return resolveGroup(ctx, lookup, orgID, group, 0)
}

func resolveGroup(ctx context.Context, lookup ConditionLookup, orgID types.OrgID, group types.ConditionGroup, depth int) (types.ConditionGroup, error) {
	if depth > types.MaxResolveDepth {
		return types.ConditionGroup{}, types.ErrResolveTooDeep
	}

	resolveNodes := func(nodes []types.Node) ([]types.Node, error) {
		if nodes == nil {
			return nil, nil
		}
		out := make([]types.Node, 0, len(nodes))
		for _, node := range nodes {
			resolved, err := resolveNode(ctx, lookup, orgID, node, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, resolved)
		}
		return out, nil
	}

	all, err := resolveNodes(group.All)
	if err != nil {
		return types.ConditionGroup{}, err
	}
	anyNodes, err := resolveNodes(group.Any)
	if err != nil {
		return types.ConditionGroup{}, err
	}
	return types.ConditionGroup{All: all, Any: anyNodes}, nil
}

func resolveNode(ctx context.Context, lookup ConditionLookup, orgID types.OrgID, node types.Node, depth int) (types.Node, error) {
	switch {
	case node.Leaf != nil:
		leaf := *node.Leaf
		return types.Node{Leaf: &leaf}, nil

	case node.Group != nil:
		resolved, err := resolveGroup(ctx, lookup, orgID, *node.Group, depth+1)
		if err != nil {
			return types.Node{}, err
		}
		return types.Node{Group: &resolved}, nil

	case node.Ref != nil:
		named, err := lookup.NamedConditionByName(ctx, orgID, node.Ref.Condition)
		if err != nil {
			return types.Node{}, fmt.Errorf("%w: %q", types.ErrUnknownCondition, node.Ref.Condition)
		}
		// The referenced tree may itself contain references.
		resolved, err := resolveGroup(ctx, lookup, orgID, named.Conditions, depth+1)
		if err != nil {
			return types.Node{}, err
		}
		return types.Node{Group: &resolved}, nil

	default:
		return types.Node{}, types.ErrInvalidNode
	}
}
