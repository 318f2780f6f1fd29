package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/helios-ops/helios/internal/types"
)

type ruleRow struct {
	RuleID               string     `db:"rule_id"`
	OrgID                string     `db:"org_id"`
	Name                 string     `db:"name"`
	Description          string     `db:"description"`
	RuleType             string     `db:"rule_type"`
	Conditions           string     `db:"conditions"`
	Priority             int        `db:"priority"`
	IsEnabled            bool       `db:"is_enabled"`
	NestingDepth         int        `db:"nesting_depth"`
	ConditionCount       int        `db:"condition_count"`
	ReferencesConditions string     `db:"references_conditions"`
	Config               string     `db:"config"`
	LastEvaluatedAt      *time.Time `db:"last_evaluated_at"`
	LastMatchCount       int        `db:"last_match_count"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

func (r ruleRow) toDomain() (*types.AutomationRule, error) {
	rule := &types.AutomationRule{
		ID:              types.RuleID(r.RuleID),
		OrgID:           types.OrgID(r.OrgID),
		Name:            r.Name,
		Description:     r.Description,
		RuleType:        types.RuleType(r.RuleType),
		Priority:        r.Priority,
		IsEnabled:       r.IsEnabled,
		NestingDepth:    r.NestingDepth,
		ConditionCount:  r.ConditionCount,
		LastEvaluatedAt: r.LastEvaluatedAt,
		LastMatchCount:  r.LastMatchCount,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if err := unmarshalJSON(r.Conditions, &rule.Conditions); err != nil {
		return nil, err
	}
	var refs []string
	if err := unmarshalJSON(r.ReferencesConditions, &refs); err != nil {
		return nil, err
	}
	rule.ReferencesConditions = conditionIDs(refs)
	if err := unmarshalJSON(r.Config, &rule.Config); err != nil {
		return nil, err
	}
	return rule, nil
}

// RuleFilter narrows ListRules. Nil fields match everything.
type RuleFilter struct {
	RuleType  *types.RuleType
	IsEnabled *bool
}

func (f RuleFilter) matches(rule *types.AutomationRule) bool {
	if f.RuleType != nil && rule.RuleType != *f.RuleType {
		return false
	}
	if f.IsEnabled != nil && rule.IsEnabled != *f.IsEnabled {
		return false
	}
	return true
}

// CreateRule inserts a validated rule and its reference join rows in one
// transaction.
func (s *Store) CreateRule(ctx context.Context, rule *types.AutomationRule) error {
	return s.writeRule(ctx, rule, true)
}

// UpdateRule rewrites a validated rule and its reference join rows in one
// transaction.
func (s *Store) UpdateRule(ctx context.Context, rule *types.AutomationRule) error {
	return s.writeRule(ctx, rule, false)
}

func (s *Store) writeRule(ctx context.Context, rule *types.AutomationRule, insert bool) error {
	tree, err := marshalJSON(rule.Conditions)
	if err != nil {
		return err
	}
	refs, err := marshalJSON(idStrings(rule.ReferencesConditions))
	if err != nil {
		return err
	}
	config := rule.Config
	if config == nil {
		config = map[string]any{}
	}
	configJSON, err := marshalJSON(config)
	if err != nil {
		return err
	}

	tx, err := s.q.DB().BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if insert {
		insertSQL, err := s.q.Raw("insert-rule")
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, insertSQL,
			string(rule.ID), string(rule.OrgID), rule.Name, rule.Description,
			string(rule.RuleType), tree, rule.Priority, rule.IsEnabled,
			rule.NestingDepth, rule.ConditionCount, refs, configJSON,
			rule.CreatedAt, rule.UpdatedAt)
		if err != nil {
			return err
		}
	} else {
		updateSQL, err := s.q.Raw("update-rule")
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, updateSQL,
			rule.Name, rule.Description, string(rule.RuleType), tree,
			rule.Priority, rule.IsEnabled, rule.NestingDepth,
			rule.ConditionCount, refs, configJSON, rule.UpdatedAt,
			string(rule.ID), string(rule.OrgID))
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return types.ErrRuleNotFound
		}
	}

	deleteRefsSQL, err := s.q.Raw("delete-rule-refs")
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, deleteRefsSQL, string(rule.ID)); err != nil {
		return err
	}
	insertRefSQL, err := s.q.Raw("insert-rule-ref")
	if err != nil {
		return err
	}
	for _, condID := range rule.ReferencesConditions {
		if _, err := tx.ExecContext(ctx, insertRefSQL, string(rule.ID), string(condID)); err != nil {
			return fmt.Errorf("recording reference to %s: %w", condID, err)
		}
	}

	return tx.Commit()
}

// DeleteRule removes a rule and its reference join rows in one transaction.
func (s *Store) DeleteRule(ctx context.Context, orgID types.OrgID, id types.RuleID) error {
	tx, err := s.q.DB().BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	deleteSQL, err := s.q.Raw("delete-rule")
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, deleteSQL, string(id), string(orgID))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return types.ErrRuleNotFound
	}

	deleteRefsSQL, err := s.q.Raw("delete-rule-refs")
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, deleteRefsSQL, string(id)); err != nil {
		return err
	}

	return tx.Commit()
}

// Rule fetches one rule by id.
func (s *Store) Rule(ctx context.Context, orgID types.OrgID, id types.RuleID) (*types.AutomationRule, error) {
	var row ruleRow
	err := s.q.Get(ctx, "get-rule", &row, string(id), string(orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrRuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

// ListRules returns the organization's rules matching the filter, ordered by
// priority descending then name ascending. Ordering happens in SQL; the
// filter is applied here to keep the named statement static.
func (s *Store) ListRules(ctx context.Context, orgID types.OrgID, filter RuleFilter) ([]*types.AutomationRule, error) {
	var rows []ruleRow
	if err := s.q.Select(ctx, "list-rules", &rows, string(orgID)); err != nil {
		return nil, err
	}
	out := make([]*types.AutomationRule, 0, len(rows))
	for _, row := range rows {
		rule, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		if filter.matches(rule) {
			out = append(out, rule)
		}
	}
	return out, nil
}

// RulesReferencing returns all rules whose reference closure contains the
// condition, for usage display and the delete guard.
func (s *Store) RulesReferencing(ctx context.Context, orgID types.OrgID, id types.ConditionID) ([]*types.AutomationRule, error) {
	var rows []ruleRow
	if err := s.q.Select(ctx, "rules-referencing-condition", &rows, string(orgID), string(id)); err != nil {
		return nil, err
	}
	out := make([]*types.AutomationRule, 0, len(rows))
	for _, row := range rows {
		rule, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}

// UpdateRuleEvalStats records the last evaluation time and match count.
func (s *Store) UpdateRuleEvalStats(ctx context.Context, orgID types.OrgID, id types.RuleID, at time.Time, matchCount int) error {
	_, err := s.q.Exec(ctx, "update-rule-eval-stats", at, matchCount, string(id), string(orgID))
	return err
}
