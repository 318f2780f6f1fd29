package types

import "errors"

// Sentinel errors for Helios rule engine operations.
var (
	// ErrUnknownCondition indicates a named-condition reference that does not
	// resolve within the organization. Fatal at resolution time: a rule with
	// a dangling reference is broken, not "no match".
	ErrUnknownCondition = errors.New("referenced named condition does not exist")

	// ErrConditionInUse indicates an attempt to delete a named condition
	// still referenced by one or more automation rules.
	ErrConditionInUse = errors.New("named condition is referenced by automation rules")

	// ErrConditionNotFound indicates a named condition lookup by id failed.
	ErrConditionNotFound = errors.New("named condition not found")

	// ErrRuleNotFound indicates an automation rule lookup by id failed.
	ErrRuleNotFound = errors.New("automation rule not found")

	// ErrUserNotFound indicates a directory user lookup failed.
	ErrUserNotFound = errors.New("directory user not found")

	// ErrResolveTooDeep indicates reference substitution exceeded
	// MaxResolveDepth. Only reachable through corrupt persisted rows;
	// validated trees cannot recurse this far.
	ErrResolveTooDeep = errors.New("condition reference resolution exceeds maximum depth")

	// ErrInvalidNode indicates a condition tree node that is not exactly one
	// of leaf condition, group, or named reference.
	ErrInvalidNode = errors.New("condition node must be exactly one of fact, all/any, or condition")

	// ErrInvalidTree indicates a condition tree rejected by validation.
	// Structured violations travel in ValidationResult; this sentinel marks
	// the rejection at the CRUD boundary.
	ErrInvalidTree = errors.New("condition tree failed validation")
)
