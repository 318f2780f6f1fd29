// internal/types/conditions_test.go
package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNodeUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
		check   func(t *testing.T, n Node)
	}{
		{
			name: "leaf condition",
			data: `{"fact": "department", "operator": "equal", "value": "Engineering"}`,
			check: func(t *testing.T, n Node) {
				if n.Leaf == nil {
					t.Fatalf("Leaf = nil, want populated")
				}
				if n.Leaf.Fact != "department" || n.Leaf.Operator != "equal" {
					t.Errorf("Leaf = %+v, want department/equal", n.Leaf)
				}
				if n.Leaf.Value != "Engineering" {
					t.Errorf("Value = %v, want Engineering", n.Leaf.Value)
				}
			},
		},
		{
			name: "leaf with path",
			data: `{"fact": "custom.entitlements", "operator": "equal", "value": "gold", "path": "support.tier"}`,
			check: func(t *testing.T, n Node) {
				if n.Leaf == nil || n.Leaf.Path != "support.tier" {
					t.Errorf("Leaf = %+v, want path support.tier", n.Leaf)
				}
			},
		},
		{
			name: "all group",
			data: `{"all": [{"fact": "status", "operator": "equal", "value": "active"}]}`,
			check: func(t *testing.T, n Node) {
				if n.Group == nil {
					t.Fatalf("Group = nil, want populated")
				}
				if len(n.Group.All) != 1 {
					t.Errorf("len(All) = %d, want 1", len(n.Group.All))
				}
			},
		},
		{
			name: "any group",
			data: `{"any": [{"fact": "userType", "operator": "equal", "value": "employee"}]}`,
			check: func(t *testing.T, n Node) {
				if n.Group == nil || len(n.Group.Any) != 1 {
					t.Errorf("Group = %+v, want any with one child", n.Group)
				}
			},
		},
		{
			name: "named reference",
			data: `{"condition": "senior_eng"}`,
			check: func(t *testing.T, n Node) {
				if n.Ref == nil || n.Ref.Condition != "senior_eng" {
					t.Errorf("Ref = %+v, want senior_eng", n.Ref)
				}
			},
		},
		{
			name:    "leaf without operator",
			data:    `{"fact": "status", "value": "active"}`,
			wantErr: true,
		},
		{
			name:    "empty reference name",
			data:    `{"condition": ""}`,
			wantErr: true,
		},
		{
			name:    "group with both all and any",
			data:    `{"all": [{"fact": "a", "operator": "equal"}], "any": [{"fact": "b", "operator": "equal"}]}`,
			wantErr: true,
		},
		{
			name:    "ambiguous leaf and reference",
			data:    `{"fact": "status", "operator": "equal", "condition": "senior_eng"}`,
			wantErr: true,
		},
		{
			name:    "empty object",
			data:    `{}`,
			wantErr: true,
		},
		{
			name:    "unrelated keys only",
			data:    `{"foo": "bar"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Node
			err := json.Unmarshal([]byte(tt.data), &n)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Unmarshal(%s) error = nil, want error", tt.data)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal(%s) error = %v, want nil", tt.data, err)
			}
			tt.check(t, n)
		})
	}
}

func TestNodeMarshal_RoundTrip(t *testing.T) {
	data := `{"all":[{"fact":"department","operator":"equal","value":"Engineering"},{"any":[{"condition":"senior_eng"},{"fact":"tenureDays","operator":"greaterThanInclusive","value":730}]}]}`

	var group ConditionGroup
	if err := json.Unmarshal([]byte(data), &group); err != nil {
		t.Fatalf("Unmarshal() error = %v, want nil", err)
	}

	out, err := json.Marshal(group)
	if err != nil {
		t.Fatalf("Marshal() error = %v, want nil", err)
	}
	if string(out) != data {
		t.Errorf("round trip = %s, want %s", out, data)
	}
}

func TestNodeMarshal_EmptyNode(t *testing.T) {
	_, err := json.Marshal(Node{})
	if !errors.Is(err, ErrInvalidNode) {
		t.Fatalf("Marshal(empty node) error = %v, want ErrInvalidNode", err)
	}
}

func TestConditionGroup_Clone(t *testing.T) {
	original := ConditionGroup{
		All: []Node{
			{Leaf: &Condition{Fact: "status", Operator: "equal", Value: "active"}},
			{Group: &ConditionGroup{
				Any: []Node{{Ref: &ConditionRef{Condition: "senior_eng"}}},
			}},
		},
	}

	clone := original.Clone()
	clone.All[0].Leaf.Fact = "mutated"
	clone.All[1].Group.Any[0].Ref.Condition = "mutated"

	if original.All[0].Leaf.Fact != "status" {
		t.Errorf("leaf mutation leaked into original")
	}
	if original.All[1].Group.Any[0].Ref.Condition != "senior_eng" {
		t.Errorf("nested ref mutation leaked into original")
	}
}

func TestConditionGroup_Children(t *testing.T) {
	all := ConditionGroup{All: []Node{{Leaf: &Condition{Fact: "a", Operator: "equal"}}}}
	nodes, conjunction := all.Children()
	if !conjunction || len(nodes) != 1 {
		t.Errorf("Children() = (%d nodes, %v), want (1, true)", len(nodes), conjunction)
	}

	anyGroup := ConditionGroup{Any: []Node{{Leaf: &Condition{Fact: "a", Operator: "equal"}}}}
	nodes, conjunction = anyGroup.Children()
	if conjunction || len(nodes) != 1 {
		t.Errorf("Children() = (%d nodes, %v), want (1, false)", len(nodes), conjunction)
	}
}
