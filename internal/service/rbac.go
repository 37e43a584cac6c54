package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitnease/fitnease-auth/internal/models"
	"github.com/fitnease/fitnease-auth/internal/repo"
	"github.com/fitnease/fitnease-auth/pkg/logging"
	"gorm.io/gorm"
)

// RBACService owns the role/permission graph and its user assignments.
type RBACService struct {
	Repo *repo.GormRepo
}

func (s *RBACService) CreateRole(ctx context.Context, name, description string, isActive bool) (*models.Role, error) {
	if name == "" || len(name) > 50 {
		return nil, fmt.Errorf("%w: role_name is required (max 50 chars)", ErrValidation)
	}
	role := &models.Role{Name: name, Description: description, IsActive: isActive}
	if err := s.Repo.CreateRole(ctx, role); err != nil {
		if errors.Is(err, repo.ErrRoleAlreadyExist) {
			return nil, fmt.Errorf("%w: role_name already taken", ErrValidation)
		}
		return nil, err
	}
	return role, nil
}

func (s *RBACService) Role(ctx context.Context, id uint) (*models.Role, error) {
	role, err := s.Repo.RoleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return role, nil
}

func (s *RBACService) Roles(ctx context.Context) ([]models.Role, error) {
	return s.Repo.ListRoles(ctx)
}

type RoleUpdate struct {
	Name        *string `json:"role_name"`
	Description *string `json:"role_description"`
	IsActive    *bool   `json:"is_active"`
}

func (s *RBACService) UpdateRole(ctx context.Context, id uint, upd RoleUpdate) (*models.Role, error) {
	role, err := s.Role(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		if *upd.Name == "" || len(*upd.Name) > 50 {
			return nil, fmt.Errorf("%w: role_name is required (max 50 chars)", ErrValidation)
		}
		role.Name = *upd.Name
	}
	if upd.Description != nil {
		role.Description = *upd.Description
	}
	if upd.IsActive != nil {
		role.IsActive = *upd.IsActive
	}
	if err := s.Repo.SaveRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// DeleteRole removes the role and cascades to its assignments and grants.
func (s *RBACService) DeleteRole(ctx context.Context, id uint) error {
	affected, err := s.Repo.DeleteRole(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignRole adds the (user, role) edge, recording the acting account.
// A duplicate edge is a user error, not a silent no-op.
func (s *RBACService) AssignRole(ctx context.Context, userID, roleID, actorID uint) (*models.UserRole, error) {
	l := logging.FromContext(ctx).With("svc", "rbac.assign_role")

	if _, err := s.Repo.UserByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.Repo.RoleByID(ctx, roleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	exists, err := s.Repo.RoleAssignmentExists(ctx, userID, roleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyAssigned
	}

	edge := &models.UserRole{
		UserID:     userID,
		RoleID:     roleID,
		AssignedBy: actorID,
		AssignedAt: time.Now().UTC(),
	}
	if err := s.Repo.CreateRoleAssignment(ctx, edge); err != nil {
		// A racing duplicate insert hits the unique index; surface it the
		// same way as the pre-check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyAssigned
		}
		return nil, err
	}

	l.Info("role_assigned", "user_id", userID, "role_id", roleID, "assigned_by", actorID)
	return edge, nil
}

func (s *RBACService) RevokeRole(ctx context.Context, userID, roleID uint) error {
	affected, err := s.Repo.DeleteRoleAssignment(ctx, userID, roleID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotAssigned
	}
	return nil
}

// GrantPermission adds the (role, permission) edge with provenance.
func (s *RBACService) GrantPermission(ctx context.Context, roleID, permissionID, actorID uint) (*models.RolePermission, error) {
	if _, err := s.Repo.RoleByID(ctx, roleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.Repo.PermissionByID(ctx, permissionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	exists, err := s.Repo.PermissionGrantExists(ctx, roleID, permissionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyGranted
	}

	edge := &models.RolePermission{
		RoleID:       roleID,
		PermissionID: permissionID,
		AssignedBy:   actorID,
		AssignedAt:   time.Now().UTC(),
	}
	if err := s.Repo.CreatePermissionGrant(ctx, edge); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyGranted
		}
		return nil, err
	}
	return edge, nil
}

func (s *RBACService) RevokePermission(ctx context.Context, roleID, permissionID uint) error {
	affected, err := s.Repo.DeletePermissionGrant(ctx, roleID, permissionID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotGranted
	}
	return nil
}

func (s *RBACService) HasRole(ctx context.Context, userID uint, roleName string) (bool, error) {
	return s.Repo.UserHasRole(ctx, userID, roleName)
}

// HasPermission walks user -> roles -> permissions. This is the
// fine-grained check path, independent of token abilities.
func (s *RBACService) HasPermission(ctx context.Context, userID uint, permissionName string) (bool, error) {
	return s.Repo.UserHasPermission(ctx, userID, permissionName)
}

func (s *RBACService) UserRoles(ctx context.Context, userID uint) ([]models.Role, error) {
	if _, err := s.Repo.UserByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Repo.RolesForUser(ctx, userID)
}

func (s *RBACService) RolePermissions(ctx context.Context, roleID uint) ([]models.Permission, error) {
	if _, err := s.Repo.RoleByID(ctx, roleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Repo.PermissionsForRole(ctx, roleID)
}

func (s *RBACService) CreatePermission(ctx context.Context, name, description string, isActive bool) (*models.Permission, error) {
	if name == "" || len(name) > 50 {
		return nil, fmt.Errorf("%w: permission_name is required (max 50 chars)", ErrValidation)
	}
	p := &models.Permission{Name: name, Description: description, IsActive: isActive}
	if err := s.Repo.CreatePermission(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: permission_name already taken", ErrValidation)
		}
		return nil, err
	}
	return p, nil
}

func (s *RBACService) Permissions(ctx context.Context) ([]models.Permission, error) {
	return s.Repo.ListPermissions(ctx)
}
