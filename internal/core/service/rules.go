package service

import (
	"context"
	"fmt"

	"github.com/helios-ops/helios/internal/rules"
	"github.com/helios-ops/helios/internal/store"
	"github.com/helios-ops/helios/internal/types"
)

// RuleInput carries client-supplied fields for an automation-rule write.
type RuleInput struct {
	Name        string
	Description string
	RuleType    types.RuleType
	Conditions  types.ConditionGroup
	Priority    int
	IsEnabled   bool
	Config      map[string]any
}

func (in RuleInput) check() error {
	if in.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	if !types.ValidRuleType(string(in.RuleType)) {
		return fmt.Errorf("unknown rule type %q", in.RuleType)
	}
	return nil
}

// CreateRule validates and persists a new automation rule.
func (s *Service) CreateRule(ctx context.Context, orgID types.OrgID, input RuleInput) (*types.AutomationRule, rules.ValidationResult, error) {
	if err := input.check(); err != nil {
		return nil, rules.ValidationResult{}, err
	}

	result := rules.Validate(ctx, s.conditions, orgID, input.Conditions, "")
	if !result.Valid {
		return nil, result, types.ErrInvalidTree
	}

	now := s.now()
	rule := &types.AutomationRule{
		ID:                   types.NewRuleID(),
		OrgID:                orgID,
		Name:                 input.Name,
		Description:          input.Description,
		RuleType:             input.RuleType,
		Conditions:           input.Conditions,
		Priority:             input.Priority,
		IsEnabled:            input.IsEnabled,
		NestingDepth:         result.NestingDepth,
		ConditionCount:       result.ConditionCount,
		ReferencesConditions: result.ReferencedConditions,
		Config:               input.Config,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.ruleStore.CreateRule(ctx, rule); err != nil {
		return nil, result, err
	}

	s.engine.Invalidate(orgID)
	s.log.Info().Str("org_id", string(orgID)).Str("rule", rule.Name).Str("rule_type", string(rule.RuleType)).Msg("automation rule created")
	return rule, result, nil
}

// UpdateRule re-validates and rewrites an existing automation rule.
func (s *Service) UpdateRule(ctx context.Context, orgID types.OrgID, id types.RuleID, input RuleInput) (*types.AutomationRule, rules.ValidationResult, error) {
	if err := input.check(); err != nil {
		return nil, rules.ValidationResult{}, err
	}

	rule, err := s.ruleStore.Rule(ctx, orgID, id)
	if err != nil {
		return nil, rules.ValidationResult{}, err
	}

	result := rules.Validate(ctx, s.conditions, orgID, input.Conditions, "")
	if !result.Valid {
		return nil, result, types.ErrInvalidTree
	}

	rule.Name = input.Name
	rule.Description = input.Description
	rule.RuleType = input.RuleType
	rule.Conditions = input.Conditions
	rule.Priority = input.Priority
	rule.IsEnabled = input.IsEnabled
	rule.NestingDepth = result.NestingDepth
	rule.ConditionCount = result.ConditionCount
	rule.ReferencesConditions = result.ReferencedConditions
	rule.Config = input.Config
	rule.UpdatedAt = s.now()

	if err := s.ruleStore.UpdateRule(ctx, rule); err != nil {
		return nil, result, err
	}

	s.engine.Invalidate(orgID)
	s.log.Info().Str("org_id", string(orgID)).Str("rule", rule.Name).Msg("automation rule updated")
	return rule, result, nil
}

// DeleteRule removes an automation rule and its reference rows.
func (s *Service) DeleteRule(ctx context.Context, orgID types.OrgID, id types.RuleID) error {
	if err := s.ruleStore.DeleteRule(ctx, orgID, id); err != nil {
		return err
	}
	s.engine.Invalidate(orgID)
	s.log.Info().Str("org_id", string(orgID)).Str("rule_id", string(id)).Msg("automation rule deleted")
	return nil
}

// GetRule fetches one automation rule.
func (s *Service) GetRule(ctx context.Context, orgID types.OrgID, id types.RuleID) (*types.AutomationRule, error) {
	return s.ruleStore.Rule(ctx, orgID, id)
}

// ListRules returns rules matching the filter, priority descending then
// name ascending.
func (s *Service) ListRules(ctx context.Context, orgID types.OrgID, filter store.RuleFilter) ([]*types.AutomationRule, error) {
	return s.ruleStore.ListRules(ctx, orgID, filter)
}
