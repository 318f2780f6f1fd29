// Package types provides domain models shared across Helios components.
//
// Zero-dependency design: types.go, conditions.go and errors.go use only the
// standard library so downstream packages (rule engine, fact builder) can
// import them without pulling persistence dependencies. ID utilities in
// ids.go import uuid but are isolated for selective inclusion.
package types

import "time"

// OrgID identifies an organization (tenant). UUIDv7 string alias.
// String alias enables type safety while maintaining JSON string serialization.
type OrgID string

// UserID identifies an organization user, the subject of fact building.
type UserID string

// ConditionID identifies a named condition. UUIDv7 string alias.
type ConditionID string

// RuleID identifies an automation rule. UUIDv7 string alias.
type RuleID string

// RuleType partitions automation rules by the downstream action their match
// drives. The engine treats all types identically; consumers filter by type.
type RuleType string

const (
	RuleTypeDynamicGroup   RuleType = "dynamic_group"
	RuleTypeTemplateMatch  RuleType = "template_match"
	RuleTypeTrainingAssign RuleType = "training_assign"
	RuleTypeNotification   RuleType = "notification"
	RuleTypeWorkflow       RuleType = "workflow"
)

// ValidRuleType reports whether s is one of the known rule types.
func ValidRuleType(s string) bool {
	switch RuleType(s) {
	case RuleTypeDynamicGroup, RuleTypeTemplateMatch, RuleTypeTrainingAssign,
		RuleTypeNotification, RuleTypeWorkflow:
		return true
	}
	return false
}

// FactMap is the flat attribute map a subject is evaluated against.
// Values are JSON-shaped: string, float64, bool, []any, map[string]any, nil.
type FactMap map[string]any

// Resource limits enforced by the rule engine to keep authoring bounded and
// evaluation cost predictable.
const (
	// MaxNestingDepth caps effective condition-group nesting in a resolved
	// tree, including depth contributed by substituted named conditions.
	// 3 levels cover every rule shape observed in production tenants.
	MaxNestingDepth = 3

	// WarnNestingDepth produces a non-blocking authoring warning.
	WarnNestingDepth = 2

	// MaxConditionsPerRule caps leaf conditions per tree. 20 keeps worst-case
	// evaluation linear and the rule-builder UI legible.
	MaxConditionsPerRule = 20

	// MaxDepartmentHops bounds the department parent-pointer walk.
	// Terminates ancestry computation even if the externally synced
	// department table contains an undetected cycle.
	MaxDepartmentHops = 10

	// MaxManagerHops bounds the reporting-chain walk, same rationale.
	MaxManagerHops = 20

	// MaxResolveDepth bounds recursive reference substitution. Validation
	// rejects cycles before write, but resolution must still terminate on
	// corrupt rows.
	MaxResolveDepth = 16
)

// CustomFactPrefix namespaces extensible user attributes in the fact map so
// they cannot collide with built-in fact names.
const CustomFactPrefix = "custom."

// DirectoryUser is the persisted attribute row for one organization user,
// as read from the directory tables the fact builder consumes.
type DirectoryUser struct {
	UserID       UserID         `db:"user_id"`
	OrgID        OrgID          `db:"org_id"`
	Email        string         `db:"email"`
	FirstName    string         `db:"first_name"`
	LastName     string         `db:"last_name"`
	JobTitle     string         `db:"job_title"`
	UserType     string         `db:"user_type"`
	Status       string         `db:"status"`
	CostCenter   string         `db:"cost_center"`
	DepartmentID string         `db:"department_id"`
	LocationID   string         `db:"location_id"`
	ManagerID    string         `db:"manager_id"`
	HiredAt      *time.Time     `db:"hired_at"`
	Custom       map[string]any `db:"-"`
}

// Department is one node of the externally synced department hierarchy.
// ParentID is empty at the root.
type Department struct {
	DepartmentID string `db:"department_id"`
	OrgID        OrgID  `db:"org_id"`
	Name         string `db:"name"`
	ParentID     string `db:"parent_id"`
}
