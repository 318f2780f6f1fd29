package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/helios-ops/helios/internal/types"
)

type orgUserRow struct {
	UserID           string     `db:"user_id"`
	OrgID            string     `db:"org_id"`
	Email            string     `db:"email"`
	FirstName        string     `db:"first_name"`
	LastName         string     `db:"last_name"`
	JobTitle         string     `db:"job_title"`
	UserType         string     `db:"user_type"`
	Status           string     `db:"status"`
	CostCenter       string     `db:"cost_center"`
	DepartmentID     string     `db:"department_id"`
	LocationID       string     `db:"location_id"`
	ManagerID        string     `db:"manager_id"`
	HiredAt          *time.Time `db:"hired_at"`
	CustomAttributes string     `db:"custom_attributes"`
}

// User fetches one directory user row. Implements facts.Directory.
func (s *Store) User(ctx context.Context, orgID types.OrgID, userID types.UserID) (*types.DirectoryUser, error) {
	var row orgUserRow
	err := s.q.Get(ctx, "get-org-user", &row, string(orgID), string(userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	user := &types.DirectoryUser{
		UserID:       types.UserID(row.UserID),
		OrgID:        types.OrgID(row.OrgID),
		Email:        row.Email,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		JobTitle:     row.JobTitle,
		UserType:     row.UserType,
		Status:       row.Status,
		CostCenter:   row.CostCenter,
		DepartmentID: row.DepartmentID,
		LocationID:   row.LocationID,
		ManagerID:    row.ManagerID,
		HiredAt:      row.HiredAt,
	}
	if err := unmarshalJSON(row.CustomAttributes, &user.Custom); err != nil {
		return nil, err
	}
	return user, nil
}

// Department fetches one department hierarchy node. Implements
// facts.Directory.
func (s *Store) Department(ctx context.Context, orgID types.OrgID, departmentID string) (*types.Department, error) {
	var dept types.Department
	err := s.q.Get(ctx, "get-department", &dept, string(orgID), departmentID)
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

// ManagerOf returns the manager id of the given user, empty at the top of
// the chain. Implements facts.Directory.
func (s *Store) ManagerOf(ctx context.Context, orgID types.OrgID, userID types.UserID) (string, error) {
	var managerID string
	err := s.q.Get(ctx, "get-manager-id", &managerID, string(orgID), string(userID))
	if errors.Is(err, sql.ErrNoRows) {
		// A missing row terminates the walk instead of failing fact
		// building; directory sync can lag behind manager references.
		return "", nil
	}
	return managerID, err
}
