package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/helios-ops/helios/internal/types"
)

type namedConditionRow struct {
	ConditionID          string    `db:"condition_id"`
	OrgID                string    `db:"org_id"`
	Name                 string    `db:"name"`
	DisplayName          string    `db:"display_name"`
	Description          string    `db:"description"`
	Conditions           string    `db:"conditions"`
	NestingDepth         int       `db:"nesting_depth"`
	ConditionCount       int       `db:"condition_count"`
	ReferencesConditions string    `db:"references_conditions"`
	CreatedAt            time.Time `db:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"`
}

func (r namedConditionRow) toDomain() (*types.NamedCondition, error) {
	cond := &types.NamedCondition{
		ID:             types.ConditionID(r.ConditionID),
		OrgID:          types.OrgID(r.OrgID),
		Name:           r.Name,
		DisplayName:    r.DisplayName,
		Description:    r.Description,
		NestingDepth:   r.NestingDepth,
		ConditionCount: r.ConditionCount,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if err := unmarshalJSON(r.Conditions, &cond.Conditions); err != nil {
		return nil, err
	}
	var refs []string
	if err := unmarshalJSON(r.ReferencesConditions, &refs); err != nil {
		return nil, err
	}
	cond.ReferencesConditions = conditionIDs(refs)
	return cond, nil
}

// CreateNamedCondition inserts a validated named condition.
func (s *Store) CreateNamedCondition(ctx context.Context, cond *types.NamedCondition) error {
	tree, err := marshalJSON(cond.Conditions)
	if err != nil {
		return err
	}
	refs, err := marshalJSON(idStrings(cond.ReferencesConditions))
	if err != nil {
		return err
	}
	_, err = s.q.Exec(ctx, "insert-named-condition",
		string(cond.ID), string(cond.OrgID), cond.Name, cond.DisplayName,
		cond.Description, tree, cond.NestingDepth, cond.ConditionCount,
		refs, cond.CreatedAt, cond.UpdatedAt)
	return err
}

// UpdateNamedCondition rewrites a validated named condition in place.
// Name is immutable; rules reference conditions by name.
func (s *Store) UpdateNamedCondition(ctx context.Context, cond *types.NamedCondition) error {
	tree, err := marshalJSON(cond.Conditions)
	if err != nil {
		return err
	}
	refs, err := marshalJSON(idStrings(cond.ReferencesConditions))
	if err != nil {
		return err
	}
	res, err := s.q.Exec(ctx, "update-named-condition",
		cond.DisplayName, cond.Description, tree, cond.NestingDepth,
		cond.ConditionCount, refs, cond.UpdatedAt,
		string(cond.ID), string(cond.OrgID))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return types.ErrConditionNotFound
	}
	return nil
}

// DeleteNamedCondition removes a named condition row. The usage guard is
// enforced by the service layer before this is called.
func (s *Store) DeleteNamedCondition(ctx context.Context, orgID types.OrgID, id types.ConditionID) error {
	res, err := s.q.Exec(ctx, "delete-named-condition", string(id), string(orgID))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return types.ErrConditionNotFound
	}
	return nil
}

// NamedCondition fetches one named condition by id.
func (s *Store) NamedCondition(ctx context.Context, orgID types.OrgID, id types.ConditionID) (*types.NamedCondition, error) {
	var row namedConditionRow
	err := s.q.Get(ctx, "get-named-condition", &row, string(id), string(orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrConditionNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

// NamedConditionByName fetches one named condition by its per-organization
// name. Implements rules.ConditionLookup for validation and resolution.
func (s *Store) NamedConditionByName(ctx context.Context, orgID types.OrgID, name string) (*types.NamedCondition, error) {
	var row namedConditionRow
	err := s.q.Get(ctx, "get-named-condition-by-name", &row, string(orgID), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrConditionNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

// ListNamedConditions returns all named conditions for the organization,
// ordered by name.
func (s *Store) ListNamedConditions(ctx context.Context, orgID types.OrgID) ([]*types.NamedCondition, error) {
	var rows []namedConditionRow
	if err := s.q.Select(ctx, "list-named-conditions", &rows, string(orgID)); err != nil {
		return nil, err
	}
	out := make([]*types.NamedCondition, 0, len(rows))
	for _, row := range rows {
		cond, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, cond)
	}
	return out, nil
}

// UsageCount returns the number of automation rules whose reference closure
// contains the condition.
func (s *Store) UsageCount(ctx context.Context, orgID types.OrgID, id types.ConditionID) (int, error) {
	var count int
	err := s.q.Get(ctx, "count-rules-referencing", &count, string(orgID), string(id))
	return count, err
}
