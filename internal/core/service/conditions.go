package service

import (
	"context"
	"fmt"

	"github.com/helios-ops/helios/internal/rules"
	"github.com/helios-ops/helios/internal/types"
)

// ConditionInput carries client-supplied fields for a named-condition write.
// Derived fields are computed here; anything the client sends for them is
// ignored.
type ConditionInput struct {
	Name        string
	DisplayName string
	Description string
	Conditions  types.ConditionGroup
}

// CreateNamedCondition validates and persists a new named condition.
// On validation failure the tree is not written; the structured result
// carries the violations alongside types.ErrInvalidTree.
func (s *Service) CreateNamedCondition(ctx context.Context, orgID types.OrgID, input ConditionInput) (*types.NamedCondition, rules.ValidationResult, error) {
	if input.Name == "" {
		return nil, rules.ValidationResult{}, fmt.Errorf("condition name is required")
	}
	if existing, err := s.conditions.NamedConditionByName(ctx, orgID, input.Name); err == nil && existing != nil {
		return nil, rules.ValidationResult{}, fmt.Errorf("condition %q already exists", input.Name)
	}

	result := rules.Validate(ctx, s.conditions, orgID, input.Conditions, "")
	if !result.Valid {
		return nil, result, types.ErrInvalidTree
	}

	now := s.now()
	cond := &types.NamedCondition{
		ID:                   types.NewConditionID(),
		OrgID:                orgID,
		Name:                 input.Name,
		DisplayName:          input.DisplayName,
		Description:          input.Description,
		Conditions:           input.Conditions,
		NestingDepth:         result.NestingDepth,
		ConditionCount:       result.ConditionCount,
		ReferencesConditions: result.ReferencedConditions,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.conditions.CreateNamedCondition(ctx, cond); err != nil {
		return nil, result, err
	}

	s.engine.Invalidate(orgID)
	s.log.Info().Str("org_id", string(orgID)).Str("condition", cond.Name).Msg("named condition created")
	return cond, result, nil
}

// UpdateNamedCondition re-validates and rewrites an existing named
// condition. The condition's own id is excluded during validation so a tree
// cannot be made to reference itself, directly or transitively.
func (s *Service) UpdateNamedCondition(ctx context.Context, orgID types.OrgID, id types.ConditionID, input ConditionInput) (*types.NamedCondition, rules.ValidationResult, error) {
	cond, err := s.conditions.NamedCondition(ctx, orgID, id)
	if err != nil {
		return nil, rules.ValidationResult{}, err
	}

	result := rules.Validate(ctx, s.conditions, orgID, input.Conditions, id)
	if !result.Valid {
		return nil, result, types.ErrInvalidTree
	}

	cond.DisplayName = input.DisplayName
	cond.Description = input.Description
	cond.Conditions = input.Conditions
	cond.NestingDepth = result.NestingDepth
	cond.ConditionCount = result.ConditionCount
	cond.ReferencesConditions = result.ReferencedConditions
	cond.UpdatedAt = s.now()

	if err := s.conditions.UpdateNamedCondition(ctx, cond); err != nil {
		return nil, result, err
	}

	s.engine.Invalidate(orgID)
	s.log.Info().Str("org_id", string(orgID)).Str("condition", cond.Name).Msg("named condition updated")
	return cond, result, nil
}

// DeleteNamedCondition removes a named condition unless any rule still
// references it.
func (s *Service) DeleteNamedCondition(ctx context.Context, orgID types.OrgID, id types.ConditionID) error {
	usage, err := s.conditions.UsageCount(ctx, orgID, id)
	if err != nil {
		return err
	}
	if usage > 0 {
		return fmt.Errorf("%w: %d rules reference it", types.ErrConditionInUse, usage)
	}

	if err := s.conditions.DeleteNamedCondition(ctx, orgID, id); err != nil {
		return err
	}

	s.engine.Invalidate(orgID)
	s.log.Info().Str("org_id", string(orgID)).Str("condition_id", string(id)).Msg("named condition deleted")
	return nil
}

// GetNamedCondition fetches one named condition with its usage count.
func (s *Service) GetNamedCondition(ctx context.Context, orgID types.OrgID, id types.ConditionID) (*types.NamedCondition, error) {
	cond, err := s.conditions.NamedCondition(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if cond.UsageCount, err = s.conditions.UsageCount(ctx, orgID, id); err != nil {
		return nil, err
	}
	return cond, nil
}

// ListNamedConditions returns all of the organization's named conditions
// with usage counts filled in.
func (s *Service) ListNamedConditions(ctx context.Context, orgID types.OrgID) ([]*types.NamedCondition, error) {
	conds, err := s.conditions.ListNamedConditions(ctx, orgID)
	if err != nil {
		return nil, err
	}
	for _, cond := range conds {
		if cond.UsageCount, err = s.conditions.UsageCount(ctx, orgID, cond.ID); err != nil {
			return nil, err
		}
	}
	return conds, nil
}

// GetConditionUsage returns every rule whose reference closure contains the
// condition, for UI display and pre-delete checks.
func (s *Service) GetConditionUsage(ctx context.Context, orgID types.OrgID, id types.ConditionID) ([]*types.AutomationRule, error) {
	if _, err := s.conditions.NamedCondition(ctx, orgID, id); err != nil {
		return nil, err
	}
	return s.ruleStore.RulesReferencing(ctx, orgID, id)
}
