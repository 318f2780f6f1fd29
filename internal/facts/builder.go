// Package facts assembles flat, evaluation-ready fact maps for subjects.
//
// This is the only place where hierarchy data is translated from the
// persisted reference-graph form (parent pointers, manager pointers) into
// the list and slash-path representations the isUnder and in operators
// expect. All graph walks are bounded by fixed hop limits because the
// hierarchy tables are externally synced and not guaranteed acyclic.
package facts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/helios-ops/helios/internal/types"
)

// Directory provides read access to directory attribute and hierarchy rows.
// Implemented by the store layer.
type Directory interface {
	User(ctx context.Context, orgID types.OrgID, userID types.UserID) (*types.DirectoryUser, error)
	Department(ctx context.Context, orgID types.OrgID, departmentID string) (*types.Department, error)
	ManagerOf(ctx context.Context, orgID types.OrgID, userID types.UserID) (string, error)
}

// Builder produces fact maps from directory data.
type Builder struct {
	dir Directory
	now func() time.Time
}

// NewBuilder creates a fact builder over the given directory reader.
func NewBuilder(dir Directory) *Builder {
	return &Builder{dir: dir, now: time.Now}
}

// UserFacts assembles the flat fact map for one subject: direct attributes,
// derived ancestry facts, and custom attributes under the custom. prefix.
func (b *Builder) UserFacts(ctx context.Context, orgID types.OrgID, userID types.UserID) (types.FactMap, error) {
	user, err := b.dir.User(ctx, orgID, userID)
	if err != nil {
		return nil, fmt.Errorf("building facts for user %s: %w", userID, err)
	}

	facts := types.FactMap{
		"email":        user.Email,
		"firstName":    user.FirstName,
		"lastName":     user.LastName,
		"jobTitle":     user.JobTitle,
		"userType":     user.UserType,
		"status":       user.Status,
		"costCenter":   user.CostCenter,
		"departmentId": user.DepartmentID,
		"locationId":   user.LocationID,
		"managerId":    user.ManagerID,
	}

	if user.HiredAt != nil {
		facts["tenureDays"] = float64(int(b.now().Sub(*user.HiredAt).Hours() / 24))
	}

	ancestry, path, err := b.departmentAncestry(ctx, orgID, user.DepartmentID)
	if err != nil {
		return nil, err
	}
	facts["departmentAncestry"] = ancestry
	facts["departmentPath"] = path
	if user.DepartmentID != "" {
		if dept, err := b.dir.Department(ctx, orgID, user.DepartmentID); err == nil {
			facts["department"] = dept.Name
		}
	}

	chain, err := b.managerChain(ctx, orgID, user.ManagerID)
	if err != nil {
		return nil, err
	}
	facts["managerChain"] = chain

	for key, value := range user.Custom {
		facts[types.CustomFactPrefix+key] = value
	}

	return facts, nil
}

// departmentAncestry walks the parent-pointer graph upward from the
// subject's department. Returns the ordered ancestor id list (nearest
// first, excluding the department itself) and the slash path from root to
// the department for prefix-style isUnder matching. Bounded to
// MaxDepartmentHops so a cyclic parent chain cannot loop forever.
func (b *Builder) departmentAncestry(ctx context.Context, orgID types.OrgID, departmentID string) ([]string, string, error) {
	ancestry := []string{}
	if departmentID == "" {
		return ancestry, "", nil
	}

	names := []string{}
	current := departmentID
	for hops := 0; current != "" && hops < types.MaxDepartmentHops; hops++ {
		dept, err := b.dir.Department(ctx, orgID, current)
		if err != nil {
			return nil, "", fmt.Errorf("resolving department %s: %w", current, err)
		}
		if hops > 0 {
			ancestry = append(ancestry, dept.DepartmentID)
		}
		names = append(names, dept.Name)
		current = dept.ParentID
	}

	// names collected leaf-to-root; the path reads root-to-leaf.
	var sb strings.Builder
	for i := len(names) - 1; i >= 0; i-- {
		sb.WriteString("/")
		sb.WriteString(names[i])
	}
	return ancestry, sb.String(), nil
}

// managerChain walks the reporting pointer chain upward from the subject's
// direct manager. Bounded to MaxManagerHops for the same termination
// guarantee as departmentAncestry.
func (b *Builder) managerChain(ctx context.Context, orgID types.OrgID, managerID string) ([]string, error) {
	chain := []string{}
	current := managerID
	for hops := 0; current != "" && hops < types.MaxManagerHops; hops++ {
		chain = append(chain, current)
		next, err := b.dir.ManagerOf(ctx, orgID, types.UserID(current))
		if err != nil {
			return nil, fmt.Errorf("resolving manager of %s: %w", current, err)
		}
		current = next
	}
	return chain, nil
}
