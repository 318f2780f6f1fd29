// internal/rules/resolve_test.go
package rules

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/helios-ops/helios/internal/types"
)

func TestResolveReferences_NoRefsIsIdentity(t *testing.T) {
	group := types.ConditionGroup{
		All: []types.Node{
			leaf("department", "equal", "Engineering"),
			groupNode(types.ConditionGroup{
				Any: []types.Node{
					leaf("userType", "equal", "employee"),
					leaf("userType", "equal", "contractor"),
				},
			}),
		},
	}

	resolved, err := ResolveReferences(context.Background(), &fakeLookup{}, "org-1", group)
	if err != nil {
		t.Fatalf("ResolveReferences() error = %v, want nil", err)
	}

	if !reflect.DeepEqual(resolved, group) {
		t.Errorf("resolved = %+v, want structurally identical to input", resolved)
	}
}

func TestResolveReferences_DoesNotMutateInput(t *testing.T) {
	lookup := &fakeLookup{byName: map[string]*types.NamedCondition{
		"is_active": {
			ID:   "cond-active",
			Name: "is_active",
			Conditions: types.ConditionGroup{
				All: []types.Node{leaf("status", "equal", "active")},
			},
		},
	}}

	group := types.ConditionGroup{
		All: []types.Node{refNode("is_active")},
	}

	resolved, err := ResolveReferences(context.Background(), lookup, "org-1", group)
	if err != nil {
		t.Fatalf("ResolveReferences() error = %v, want nil", err)
	}

	if group.All[0].Ref == nil {
		t.Errorf("input tree was mutated; reference node replaced")
	}
	if resolved.All[0].Group == nil {
		t.Fatalf("resolved.All[0].Group = nil, want substituted group")
	}
	if resolved.All[0].Group.All[0].Leaf.Fact != "status" {
		t.Errorf("substituted leaf fact = %q, want status", resolved.All[0].Group.All[0].Leaf.Fact)
	}
}

func TestResolveReferences_NestedReferences(t *testing.T) {
	// outer references inner; resolving a tree that references outer must
	// expand both levels.
	lookup := &fakeLookup{byName: map[string]*types.NamedCondition{
		"inner": {
			ID:   "cond-inner",
			Name: "inner",
			Conditions: types.ConditionGroup{
				All: []types.Node{leaf("tenureDays", "greaterThanInclusive", 730)},
			},
		},
		"outer": {
			ID:   "cond-outer",
			Name: "outer",
			Conditions: types.ConditionGroup{
				All: []types.Node{
					leaf("department", "equal", "Engineering"),
					refNode("inner"),
				},
			},
		},
	}}

	group := types.ConditionGroup{
		All: []types.Node{refNode("outer")},
	}

	resolved, err := ResolveReferences(context.Background(), lookup, "org-1", group)
	if err != nil {
		t.Fatalf("ResolveReferences() error = %v, want nil", err)
	}

	outerGroup := resolved.All[0].Group
	if outerGroup == nil {
		t.Fatalf("outer reference not substituted")
	}
	innerGroup := outerGroup.All[1].Group
	if innerGroup == nil {
		t.Fatalf("inner reference not substituted")
	}
	if innerGroup.All[0].Leaf.Fact != "tenureDays" {
		t.Errorf("inner leaf fact = %q, want tenureDays", innerGroup.All[0].Leaf.Fact)
	}
}

func TestResolveReferences_UnknownName(t *testing.T) {
	group := types.ConditionGroup{
		All: []types.Node{refNode("vanished")},
	}

	_, err := ResolveReferences(context.Background(), &fakeLookup{}, "org-1", group)
	if !errors.Is(err, types.ErrUnknownCondition) {
		t.Fatalf("ResolveReferences() error = %v, want ErrUnknownCondition", err)
	}
}

func TestResolveReferences_DepthBound(t *testing.T) {
	// A self-referential row cannot be created through validation, but the
	// resolver must still terminate if the store hands one back.
	lookup := &fakeLookup{byName: map[string]*types.NamedCondition{}}
	lookup.byName["loop"] = &types.NamedCondition{
		ID:   "cond-loop",
		Name: "loop",
		Conditions: types.ConditionGroup{
			All: []types.Node{refNode("loop")},
		},
	}

	group := types.ConditionGroup{
		All: []types.Node{refNode("loop")},
	}

	_, err := ResolveReferences(context.Background(), lookup, "org-1", group)
	if !errors.Is(err, types.ErrResolveTooDeep) {
		t.Fatalf("ResolveReferences() error = %v, want ErrResolveTooDeep", err)
	}
}
