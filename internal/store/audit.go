package store

import (
	"context"
	"time"

	"github.com/helios-ops/helios/internal/types"
)

type evaluationLogRow struct {
	OrgID        string    `db:"org_id"`
	RuleID       string    `db:"rule_id"`
	RuleType     string    `db:"rule_type"`
	Facts        string    `db:"facts"`
	Matched      bool      `db:"matched"`
	ResultEvents string    `db:"result_events"`
	TriggeredBy  string    `db:"triggered_by"`
	SubjectID    string    `db:"subject_id"`
	EvaluationMs int64     `db:"evaluation_ms"`
	CreatedAt    time.Time `db:"created_at"`
}

// AppendEvaluation writes one audit record. Rows are append-only; there is
// no update path.
func (s *Store) AppendEvaluation(ctx context.Context, entry *types.EvaluationLogEntry) error {
	facts, err := marshalJSON(entry.Facts)
	if err != nil {
		return err
	}
	events, err := marshalJSON(entry.ResultEvents)
	if err != nil {
		return err
	}
	_, err = s.q.Exec(ctx, "insert-evaluation-log",
		string(entry.OrgID), string(entry.RuleID), string(entry.RuleType),
		facts, entry.Matched, events, entry.TriggeredBy,
		string(entry.SubjectID), entry.EvaluationMs, entry.CreatedAt)
	return err
}

// RecentEvaluations returns the newest audit records for one rule, newest
// first, for rule-tuning UIs.
func (s *Store) RecentEvaluations(ctx context.Context, orgID types.OrgID, ruleID types.RuleID, limit int) ([]*types.EvaluationLogEntry, error) {
	var rows []evaluationLogRow
	if err := s.q.Select(ctx, "recent-evaluations", &rows, string(orgID), string(ruleID), limit); err != nil {
		return nil, err
	}
	out := make([]*types.EvaluationLogEntry, 0, len(rows))
	for _, row := range rows {
		entry := &types.EvaluationLogEntry{
			OrgID:        types.OrgID(row.OrgID),
			RuleID:       types.RuleID(row.RuleID),
			RuleType:     types.RuleType(row.RuleType),
			Matched:      row.Matched,
			TriggeredBy:  row.TriggeredBy,
			SubjectID:    types.UserID(row.SubjectID),
			EvaluationMs: row.EvaluationMs,
			CreatedAt:    row.CreatedAt,
		}
		if err := unmarshalJSON(row.Facts, &entry.Facts); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(row.ResultEvents, &entry.ResultEvents); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}
