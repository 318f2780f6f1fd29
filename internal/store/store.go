// Package store persists the rule subsystem's entities and exposes the read
// surface the fact builder needs.
//
// All SQL lives in named statements under internal/core/db/queries and is
// executed through the db.Queries wrapper. Condition trees, reference
// closures, configs, facts and events are stored as JSON text columns;
// rule-to-condition references are additionally denormalized into the
// rule_condition_refs join table (rewritten transactionally on every rule
// write) so usage lookups stay a single indexed join.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/helios-ops/helios/internal/core/db"
	"github.com/helios-ops/helios/internal/types"
)

// Store provides row-level CRUD for named conditions, automation rules and
// the evaluation log, plus directory reads.
type Store struct {
	q *db.Queries
}

// New creates a store over loaded named queries.
func New(q *db.Queries) *Store {
	return &Store{q: q}
}

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshaling %T: %w", v, err)
	}
	return string(data), nil
}

func unmarshalJSON(data string, dest any) error {
	if data == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("unmarshaling into %T: %w", dest, err)
	}
	return nil
}

func idStrings(ids []types.ConditionID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func conditionIDs(ids []string) []types.ConditionID {
	out := make([]types.ConditionID, len(ids))
	for i, id := range ids {
		out[i] = types.ConditionID(id)
	}
	return out
}
