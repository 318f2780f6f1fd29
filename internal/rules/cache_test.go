// internal/rules/cache_test.go
package rules

import (
	"context"
	"testing"
	"time"

	"github.com/helios-ops/helios/internal/types"
)

// fixedClock is an advanceable clock for cache expiry tests.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time { return c.t }

func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestEngine_CachesCompiledInstancePerOrg(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	engine := NewEngine(WithClock(clock.now))

	first := engine.Operators("org-1")
	second := engine.Operators("org-1")
	if first != second {
		t.Errorf("Operators() returned distinct instances within TTL, want cached")
	}

	other := engine.Operators("org-2")
	if other == first {
		t.Errorf("Operators() shared one instance across organizations, want per-org")
	}
}

func TestEngine_CacheExpiresAfterTTL(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	engine := NewEngine(WithClock(clock.now), WithCacheTTL(5*time.Minute))

	first := engine.Operators("org-1")

	clock.advance(4 * time.Minute)
	if engine.Operators("org-1") != first {
		t.Errorf("instance rebuilt before TTL elapsed")
	}

	clock.advance(2 * time.Minute)
	if engine.Operators("org-1") == first {
		t.Errorf("instance served past TTL, want lazy rebuild")
	}
}

func TestEngine_InvalidateDropsOnlyTargetOrg(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	engine := NewEngine(WithClock(clock.now))

	org1 := engine.Operators("org-1")
	org2 := engine.Operators("org-2")

	engine.Invalidate("org-1")

	if engine.Operators("org-1") == org1 {
		t.Errorf("org-1 instance survived invalidation")
	}
	if engine.Operators("org-2") != org2 {
		t.Errorf("org-2 instance dropped by org-1 invalidation")
	}
}

func TestEngine_RegisterOperatorRebuildsAll(t *testing.T) {
	engine := NewEngine()

	before := engine.Operators("org-1")
	if _, ok := before.Lookup("hasBadge"); ok {
		t.Fatalf("hasBadge registered before RegisterOperator")
	}

	engine.RegisterOperator("hasBadge", func(fact, comp any) bool {
		badges, ok := fact.([]any)
		if !ok {
			return false
		}
		for _, b := range badges {
			if b == comp {
				return true
			}
		}
		return false
	})

	after := engine.Operators("org-1")
	if after == before {
		t.Fatalf("compiled instance not rebuilt after operator registration")
	}
	if _, ok := after.Lookup("hasBadge"); !ok {
		t.Errorf("hasBadge missing from rebuilt instance")
	}
}

func TestEngine_EvaluateResolvesAndRuns(t *testing.T) {
	lookup := &fakeLookup{byName: map[string]*types.NamedCondition{
		"is_engineer": {
			ID:   "cond-eng",
			Name: "is_engineer",
			Conditions: types.ConditionGroup{
				All: []types.Node{leaf("department", "equal", "Engineering")},
			},
		},
	}}

	engine := NewEngine()
	group := types.ConditionGroup{
		All: []types.Node{
			refNode("is_engineer"),
			leaf("status", "equal", "active"),
		},
	}

	result, err := engine.Evaluate(context.Background(), lookup, "org-1", group, types.FactMap{
		"department": "Engineering",
		"status":     "active",
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v, want nil", err)
	}
	if !result.Matched {
		t.Errorf("Matched = false, want true")
	}
}

func TestEngine_EvaluateCustomOperator(t *testing.T) {
	engine := NewEngine()
	engine.RegisterOperator("lengthEquals", func(fact, comp any) bool {
		s, ok1 := fact.(string)
		n, ok2 := toFloat64(comp)
		return ok1 && ok2 && float64(len(s)) == n
	})

	group := types.ConditionGroup{
		All: []types.Node{leaf("costCenter", "lengthEquals", 7)},
	}

	result, err := engine.Evaluate(context.Background(), &fakeLookup{}, "org-1", group, types.FactMap{
		"costCenter": "CC-1042",
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v, want nil", err)
	}
	if !result.Matched {
		t.Errorf("Matched = false, want true")
	}
}
