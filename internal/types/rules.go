package types

import "time"

/*
 * Persisted entities of the rule subsystem.
 *
 * NamedCondition and AutomationRule both carry derived fields (NestingDepth,
 * ConditionCount, ReferencesConditions) computed by validation at write time.
 * Client-supplied values for these fields are never trusted; the CRUD layer
 * overwrites them with validator output before persisting.
 */

// NamedCondition is a reusable, named condition tree, referenceable from
// automation rules by Name (unique per organization).
type NamedCondition struct {
	ID          ConditionID    `db:"condition_id"`
	OrgID       OrgID          `db:"org_id"`
	Name        string         `db:"name"`
	DisplayName string         `db:"display_name"`
	Description string         `db:"description"`
	Conditions  ConditionGroup `db:"-"`

	// Derived at write time by validation, cached on the row.
	NestingDepth         int           `db:"nesting_depth"`
	ConditionCount       int           `db:"condition_count"`
	ReferencesConditions []ConditionID `db:"-"`

	// UsageCount is the number of automation rules whose transitive
	// reference closure contains this condition. Guards deletion.
	UsageCount int `db:"-"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// AutomationRule is a typed, prioritized, enableable condition tree whose
// match drives a downstream action described by Config.
type AutomationRule struct {
	ID          RuleID         `db:"rule_id"`
	OrgID       OrgID          `db:"org_id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	RuleType    RuleType       `db:"rule_type"`
	Conditions  ConditionGroup `db:"-"`
	Priority    int            `db:"priority"`
	IsEnabled   bool           `db:"is_enabled"`

	NestingDepth         int           `db:"nesting_depth"`
	ConditionCount       int           `db:"condition_count"`
	ReferencesConditions []ConditionID `db:"-"`

	// Config is the rule-type-specific payload consumed by downstream
	// collaborators (group id, template id, course id, ...). Opaque here.
	Config map[string]any `db:"-"`

	LastEvaluatedAt *time.Time `db:"last_evaluated_at"`
	LastMatchCount  int        `db:"last_match_count"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// MatchEvent records the outcome of one leaf condition during evaluation,
// for rule-tuning diagnostics in the audit log.
type MatchEvent struct {
	Fact     string `json:"fact"`
	Operator string `json:"operator"`
	Expected any    `json:"expected,omitempty"`
	Actual   any    `json:"actual,omitempty"`
	Matched  bool   `json:"matched"`
}

// EvaluationLogEntry is the append-only audit record of one rule evaluation.
// Rows are never mutated after insert.
type EvaluationLogEntry struct {
	OrgID        OrgID        `db:"org_id"`
	RuleID       RuleID       `db:"rule_id"`
	RuleType     RuleType     `db:"rule_type"`
	Facts        FactMap      `db:"-"`
	Matched      bool         `db:"matched"`
	ResultEvents []MatchEvent `db:"-"`
	TriggeredBy  string       `db:"triggered_by"`
	SubjectID    UserID       `db:"subject_id"`
	EvaluationMs int64        `db:"evaluation_ms"`
	CreatedAt    time.Time    `db:"created_at"`
}
