package types

import (
	"encoding/json"
	"fmt"
)

/*
 * Condition tree model.
 *
 * A tree node is a tagged union of exactly three kinds, discriminated by the
 * JSON keys present:
 *   - leaf condition:       {"fact": ..., "operator": ..., "value": ...}
 *   - group:                {"all": [...]} or {"any": [...]}
 *   - named reference:      {"condition": "<name>"}
 *
 * The union is explicit (Node with one populated variant) rather than
 * duck-typed maps so the validator, resolver and evaluator can switch
 * exhaustively over node kinds. Ambiguous or empty nodes fail unmarshaling;
 * malformed trees never reach validation.
 */

// Condition is a leaf predicate over a single named fact.
// Path optionally descends into a map-valued fact before comparison.
type Condition struct {
	Fact     string `json:"fact"`
	Operator string `json:"operator"`
	Value    any    `json:"value,omitempty"`
	Path     string `json:"path,omitempty"`
}

// ConditionRef references a named condition by its per-organization name.
type ConditionRef struct {
	Condition string `json:"condition"`
}

// ConditionGroup is a boolean combinator over child nodes.
// Canonical form populates exactly one of All (conjunction) or Any
// (disjunction).
type ConditionGroup struct {
	All []Node `json:"all,omitempty"`
	Any []Node `json:"any,omitempty"`
}

// Children returns the populated child slice and whether the group is a
// conjunction.
func (g ConditionGroup) Children() (nodes []Node, conjunction bool) {
	if len(g.All) > 0 {
		return g.All, true
	}
	return g.Any, false
}

// Node is one tree node: exactly one of Leaf, Group, Ref is non-nil.
type Node struct {
	Leaf  *Condition
	Group *ConditionGroup
	Ref   *ConditionRef
}

// nodeProbe mirrors every discriminating key across the three node kinds.
type nodeProbe struct {
	Fact      *string         `json:"fact"`
	Operator  string          `json:"operator"`
	Value     any             `json:"value"`
	Path      string          `json:"path"`
	All       json.RawMessage `json:"all"`
	Any       json.RawMessage `json:"any"`
	Condition *string         `json:"condition"`
}

// UnmarshalJSON discriminates the node kind by key presence and rejects
// nodes that are ambiguous or none of the three kinds.
func (n *Node) UnmarshalJSON(data []byte) error {
	var p nodeProbe
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	kinds := 0
	if p.Fact != nil {
		kinds++
	}
	if p.All != nil || p.Any != nil {
		kinds++
	}
	if p.Condition != nil {
		kinds++
	}
	if kinds != 1 {
		return fmt.Errorf("%w: got %s", ErrInvalidNode, string(data))
	}

	switch {
	case p.Fact != nil:
		if p.Operator == "" {
			return fmt.Errorf("condition on fact %q: operator is required", *p.Fact)
		}
		n.Leaf = &Condition{Fact: *p.Fact, Operator: p.Operator, Value: p.Value, Path: p.Path}
	case p.Condition != nil:
		if *p.Condition == "" {
			return fmt.Errorf("%w: empty condition reference", ErrInvalidNode)
		}
		n.Ref = &ConditionRef{Condition: *p.Condition}
	default:
		var g ConditionGroup
		if err := json.Unmarshal(data, &g); err != nil {
			return err
		}
		if len(g.All) > 0 && len(g.Any) > 0 {
			return fmt.Errorf("%w: group populates both all and any", ErrInvalidNode)
		}
		n.Group = &g
	}
	return nil
}

// MarshalJSON serializes the populated variant.
func (n Node) MarshalJSON() ([]byte, error) {
	switch {
	case n.Leaf != nil:
		return json.Marshal(n.Leaf)
	case n.Group != nil:
		return json.Marshal(n.Group)
	case n.Ref != nil:
		return json.Marshal(n.Ref)
	default:
		return nil, ErrInvalidNode
	}
}

// Clone returns a deep copy of the group. Leaf comparison values are shared;
// they are treated as immutable once embedded in a tree.
func (g ConditionGroup) Clone() ConditionGroup {
	return ConditionGroup{All: cloneNodes(g.All), Any: cloneNodes(g.Any)}
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		switch {
		case n.Leaf != nil:
			leaf := *n.Leaf
			out[i].Leaf = &leaf
		case n.Group != nil:
			group := n.Group.Clone()
			out[i].Group = &group
		case n.Ref != nil:
			ref := *n.Ref
			out[i].Ref = &ref
		}
	}
	return out
}
