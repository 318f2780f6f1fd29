// Package service is the orchestration layer of the rule subsystem: the
// single admission point for condition trees, the evaluation entrypoints,
// and the glue between stores, the fact builder and the evaluation engine.
//
// Every mutation is validate-then-write. Derived fields (nesting depth,
// condition count, reference closure) are always taken from validator
// output, never from the caller, and every successful mutation invalidates
// the organization's compiled-engine cache.
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/helios-ops/helios/internal/facts"
	"github.com/helios-ops/helios/internal/rules"
	"github.com/helios-ops/helios/internal/store"
	"github.com/helios-ops/helios/internal/types"
)

// ConditionStore is the persistence surface for named conditions.
// Implemented by *store.Store.
type ConditionStore interface {
	rules.ConditionLookup
	CreateNamedCondition(ctx context.Context, cond *types.NamedCondition) error
	UpdateNamedCondition(ctx context.Context, cond *types.NamedCondition) error
	DeleteNamedCondition(ctx context.Context, orgID types.OrgID, id types.ConditionID) error
	NamedCondition(ctx context.Context, orgID types.OrgID, id types.ConditionID) (*types.NamedCondition, error)
	ListNamedConditions(ctx context.Context, orgID types.OrgID) ([]*types.NamedCondition, error)
	UsageCount(ctx context.Context, orgID types.OrgID, id types.ConditionID) (int, error)
}

// RuleStore is the persistence surface for automation rules.
// Implemented by *store.Store.
type RuleStore interface {
	CreateRule(ctx context.Context, rule *types.AutomationRule) error
	UpdateRule(ctx context.Context, rule *types.AutomationRule) error
	DeleteRule(ctx context.Context, orgID types.OrgID, id types.RuleID) error
	Rule(ctx context.Context, orgID types.OrgID, id types.RuleID) (*types.AutomationRule, error)
	ListRules(ctx context.Context, orgID types.OrgID, filter store.RuleFilter) ([]*types.AutomationRule, error)
	RulesReferencing(ctx context.Context, orgID types.OrgID, id types.ConditionID) ([]*types.AutomationRule, error)
	UpdateRuleEvalStats(ctx context.Context, orgID types.OrgID, id types.RuleID, at time.Time, matchCount int) error
}

// AuditStore appends evaluation audit records. Implemented by *store.Store.
type AuditStore interface {
	AppendEvaluation(ctx context.Context, entry *types.EvaluationLogEntry) error
}

// Service wires stores, fact builder and evaluation engine together.
type Service struct {
	conditions ConditionStore
	ruleStore  RuleStore
	audit      AuditStore
	builder    *facts.Builder
	engine     *rules.Engine
	log        zerolog.Logger
	now        func() time.Time
}

// New creates the service. The engine is owned by the caller so custom
// operators can be registered before requests arrive.
func New(conditions ConditionStore, ruleStore RuleStore, audit AuditStore, builder *facts.Builder, engine *rules.Engine, log zerolog.Logger) *Service {
	return &Service{
		conditions: conditions,
		ruleStore:  ruleStore,
		audit:      audit,
		builder:    builder,
		engine:     engine,
		log:        log,
		now:        time.Now,
	}
}

// ValidateConditions statically analyzes a condition tree without
// persisting anything. excludeID is the named condition under edit, or "".
func (s *Service) ValidateConditions(ctx context.Context, orgID types.OrgID, group types.ConditionGroup, excludeID types.ConditionID) rules.ValidationResult {
	return rules.Validate(ctx, s.conditions, orgID, group, excludeID)
}

// BuildUserFacts assembles the evaluation-ready fact map for one subject.
func (s *Service) BuildUserFacts(ctx context.Context, orgID types.OrgID, userID types.UserID) (types.FactMap, error) {
	return s.builder.UserFacts(ctx, orgID, userID)
}

// AvailableFacts returns static fact metadata for rule-builder UIs.
func (s *Service) AvailableFacts() []facts.FactDefinition {
	return facts.Catalog()
}
