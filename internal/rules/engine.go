// internal/rules/engine.go
package rules

import (
	"context"
	"time"

	"github.com/helios-ops/helios/internal/types"
)

// DefaultCacheTTL bounds how long a compiled per-organization instance is
// served before a lazy rebuild.
const DefaultCacheTTL = 5 * time.Minute

// Engine evaluates resolved condition trees against fact maps. It owns the
// built-in operator catalog, host-registered custom operators, and the
// per-organization compiled-instance cache.
type Engine struct {
	base   *OperatorRegistry
	custom map[string]OperatorFunc
	cache  *engineCache
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	ttl time.Duration
	now func() time.Time
}

// WithCacheTTL overrides the compiled-instance TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *engineOptions) { o.ttl = ttl }
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) { o.now = now }
}

// NewEngine creates an engine with the default operator catalog.
func NewEngine(opts ...Option) *Engine {
	o := engineOptions{ttl: DefaultCacheTTL}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		base:   DefaultOperators(),
		custom: make(map[string]OperatorFunc),
		cache:  newEngineCache(o.ttl, o.now),
	}
}

// RegisterOperator adds a custom operator available to every organization.
// Compiled instances are dropped wholesale so the next access rebuilds with
// the new operator present.
func (e *Engine) RegisterOperator(name string, fn OperatorFunc) {
	e.custom[name] = fn
	e.cache.invalidateAll()
}

// Invalidate drops the organization's compiled instance. Called by the CRUD
// layer after every successful named-condition or rule mutation.
func (e *Engine) Invalidate(orgID types.OrgID) {
	e.cache.invalidate(orgID)
}

// Operators returns the compiled operator registry for the organization,
// rebuilding lazily when the cached instance is missing or expired.
func (e *Engine) Operators(orgID types.OrgID) *OperatorRegistry {
	if reg := e.cache.get(orgID); reg != nil {
		return reg
	}

	reg := e.base.Clone()
	for name, fn := range e.custom {
		reg.Register(name, fn)
	}
	e.cache.put(orgID, reg)
	return reg
}

// Evaluate resolves references in the tree and evaluates it against facts in
// a disposable single-tree context. The tree passed in is not mutated.
func (e *Engine) Evaluate(ctx context.Context, lookup ConditionLookup, orgID types.OrgID, group types.ConditionGroup, facts types.FactMap) (EvalResult, error) {
	resolved, err := ResolveReferences(ctx, lookup, orgID, group)
	if err != nil {
		return EvalResult{}, err
	}
	return EvaluateGroup(e.Operators(orgID), resolved, facts)
}
