package service

import (
	"context"

	"github.com/helios-ops/helios/internal/rules"
	"github.com/helios-ops/helios/internal/store"
	"github.com/helios-ops/helios/internal/types"
)

/*
 * Evaluation entrypoints.
 *
 * evaluateRule is the single path through enablement gate, reference
 * resolution, tree evaluation, rule statistics and the audit log. Disabled
 * rules report matched=false without running the tree, updating statistics
 * or logging. Resolution failures (a dangling named reference) abort the
 * evaluation and surface to the caller: a broken rule is an error, not a
 * non-match.
 */

// EvaluationContext carries caller identity for the audit trail. A nil
// context suppresses audit logging (used by ad-hoc evaluations that are not
// tied to a lifecycle event).
type EvaluationContext struct {
	TriggeredBy string
	SubjectID   types.UserID
}

// EvaluationResult is the outcome of evaluating one rule.
type EvaluationResult struct {
	RuleID       types.RuleID       `json:"ruleId"`
	RuleName     string             `json:"ruleName"`
	RuleType     types.RuleType     `json:"ruleType"`
	Matched      bool               `json:"matched"`
	Events       []types.MatchEvent `json:"events,omitempty"`
	EvaluationMs int64              `json:"evaluationMs"`
}

// EvaluateRule evaluates one rule against the supplied facts.
func (s *Service) EvaluateRule(ctx context.Context, orgID types.OrgID, ruleID types.RuleID, factMap types.FactMap, evalCtx *EvaluationContext) (EvaluationResult, error) {
	rule, err := s.ruleStore.Rule(ctx, orgID, ruleID)
	if err != nil {
		return EvaluationResult{}, err
	}
	return s.evaluateRule(ctx, rule, factMap, evalCtx)
}

// EvaluateRulesByType evaluates all enabled rules of one type in priority
// order and returns the subset that matched. Rules are independent: no
// short-circuiting on first match, and a broken rule is skipped with a
// warning so the remaining rules still run.
func (s *Service) EvaluateRulesByType(ctx context.Context, orgID types.OrgID, ruleType types.RuleType, factMap types.FactMap, evalCtx *EvaluationContext) ([]*types.AutomationRule, error) {
	enabled := true
	ruleList, err := s.ruleStore.ListRules(ctx, orgID, store.RuleFilter{RuleType: &ruleType, IsEnabled: &enabled})
	if err != nil {
		return nil, err
	}

	var matched []*types.AutomationRule
	for _, rule := range ruleList {
		result, err := s.evaluateRule(ctx, rule, factMap, evalCtx)
		if err != nil {
			s.log.Warn().Err(err).
				Str("org_id", string(orgID)).
				Str("rule", rule.Name).
				Msg("skipping broken rule")
			continue
		}
		if result.Matched {
			matched = append(matched, rule)
		}
	}
	return matched, nil
}

// TestRule runs validation, resolution and evaluation on an unsaved tree
// with no persistence of any kind, for rule-builder dry runs.
func (s *Service) TestRule(ctx context.Context, orgID types.OrgID, group types.ConditionGroup, factMap types.FactMap) (EvaluationResult, rules.ValidationResult, error) {
	validation := rules.Validate(ctx, s.conditions, orgID, group, "")
	if !validation.Valid {
		return EvaluationResult{}, validation, types.ErrInvalidTree
	}

	start := s.now()
	evalResult, err := s.engine.Evaluate(ctx, s.conditions, orgID, group, factMap)
	if err != nil {
		return EvaluationResult{}, validation, err
	}

	return EvaluationResult{
		Matched:      evalResult.Matched,
		Events:       evalResult.Events,
		EvaluationMs: s.now().Sub(start).Milliseconds(),
	}, validation, nil
}

func (s *Service) evaluateRule(ctx context.Context, rule *types.AutomationRule, factMap types.FactMap, evalCtx *EvaluationContext) (EvaluationResult, error) {
	result := EvaluationResult{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		RuleType: rule.RuleType,
	}

	if !rule.IsEnabled {
		return result, nil
	}

	start := s.now()
	evalResult, err := s.engine.Evaluate(ctx, s.conditions, rule.OrgID, rule.Conditions, factMap)
	if err != nil {
		return result, err
	}
	result.Matched = evalResult.Matched
	result.Events = evalResult.Events
	result.EvaluationMs = s.now().Sub(start).Milliseconds()

	matchCount := rule.LastMatchCount
	if result.Matched {
		matchCount++
	}
	if err := s.ruleStore.UpdateRuleEvalStats(ctx, rule.OrgID, rule.ID, s.now(), matchCount); err != nil {
		return result, err
	}

	if evalCtx != nil {
		entry := &types.EvaluationLogEntry{
			OrgID:        rule.OrgID,
			RuleID:       rule.ID,
			RuleType:     rule.RuleType,
			Facts:        factMap,
			Matched:      result.Matched,
			ResultEvents: result.Events,
			TriggeredBy:  evalCtx.TriggeredBy,
			SubjectID:    evalCtx.SubjectID,
			EvaluationMs: result.EvaluationMs,
			CreatedAt:    s.now(),
		}
		if err := s.audit.AppendEvaluation(ctx, entry); err != nil {
			return result, err
		}
	}

	s.log.Debug().
		Str("org_id", string(rule.OrgID)).
		Str("rule", rule.Name).
		Bool("matched", result.Matched).
		Int64("evaluation_ms", result.EvaluationMs).
		Msg("rule evaluated")

	return result, nil
}
