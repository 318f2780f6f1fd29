package types

import "github.com/google/uuid"

// NewConditionID generates a UUIDv7 named-condition identifier.
// Time-ordered IDs ensure sequential inserts cluster in B-tree pages.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewConditionID() ConditionID {
	return ConditionID(uuid.Must(uuid.NewV7()).String())
}

// NewRuleID generates a UUIDv7 automation-rule identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRuleID() RuleID {
	return RuleID(uuid.Must(uuid.NewV7()).String())
}

// ParseOrgID validates and converts a string to OrgID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseOrgID(s string) (OrgID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return OrgID(s), nil
}

// ParseConditionID validates and converts a string to ConditionID.
func ParseConditionID(s string) (ConditionID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return ConditionID(s), nil
}

// ParseRuleID validates and converts a string to RuleID.
func ParseRuleID(s string) (RuleID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return RuleID(s), nil
}
