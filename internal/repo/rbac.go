package repo

import (
	"context"
	"errors"

	"github.com/fitnease/fitnease-auth/internal/models"
	"gorm.io/gorm"
)

var ErrRoleAlreadyExist = errors.New("role already exist")

func (r *GormRepo) CreateRole(ctx context.Context, role *models.Role) error {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Role{}).
		Where("role_name = ?", role.Name).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrRoleAlreadyExist
	}
	return r.DB.WithContext(ctx).Create(role).Error
}

func (r *GormRepo) RoleByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := r.DB.WithContext(ctx).Where("role_id = ?", id).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *GormRepo) RoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.DB.WithContext(ctx).Where("role_name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *GormRepo) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := r.DB.WithContext(ctx).Order("role_id").Find(&roles).Error
	return roles, err
}

func (r *GormRepo) SaveRole(ctx context.Context, role *models.Role) error {
	return r.DB.WithContext(ctx).Save(role).Error
}

// DeleteRole removes a role and cascades to its user assignments and
// permission grants.
func (r *GormRepo) DeleteRole(ctx context.Context, id uint) (int64, error) {
	var affected int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		result := tx.Where("role_id = ?", id).Delete(&models.Role{})
		affected = result.RowsAffected
		return result.Error
	})
	return affected, err
}

func (r *GormRepo) CreatePermission(ctx context.Context, p *models.Permission) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) PermissionByID(ctx context.Context, id uint) (*models.Permission, error) {
	var p models.Permission
	if err := r.DB.WithContext(ctx).Where("permission_id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var list []models.Permission
	err := r.DB.WithContext(ctx).Order("permission_id").Find(&list).Error
	return list, err
}

func (r *GormRepo) RoleAssignmentExists(ctx context.Context, userID, roleID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRepo) CreateRoleAssignment(ctx context.Context, ur *models.UserRole) error {
	return r.DB.WithContext(ctx).Create(ur).Error
}

func (r *GormRepo) DeleteRoleAssignment(ctx context.Context, userID, roleID uint) (int64, error) {
	result := r.DB.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.UserRole{})
	return result.RowsAffected, result.Error
}

func (r *GormRepo) PermissionGrantExists(ctx context.Context, roleID, permissionID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.RolePermission{}).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRepo) CreatePermissionGrant(ctx context.Context, rp *models.RolePermission) error {
	return r.DB.WithContext(ctx).Create(rp).Error
}

func (r *GormRepo) DeletePermissionGrant(ctx context.Context, roleID, permissionID uint) (int64, error) {
	result := r.DB.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&models.RolePermission{})
	return result.RowsAffected, result.Error
}

// RoleNamesForUser returns the names of the roles assigned to the user.
// This feeds ability resolution at login.
func (r *GormRepo) RoleNamesForUser(ctx context.Context, userID uint) ([]string, error) {
	var names []string
	err := r.DB.WithContext(ctx).Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.role_id").
		Where("user_roles.user_id = ?", userID).
		Pluck("roles.role_name", &names).Error
	return names, err
}

func (r *GormRepo) RolesForUser(ctx context.Context, userID uint) ([]models.Role, error) {
	var roles []models.Role
	err := r.DB.WithContext(ctx).Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.role_id").
		Where("user_roles.user_id = ?", userID).
		Find(&roles).Error
	return roles, err
}

func (r *GormRepo) PermissionsForRole(ctx context.Context, roleID uint) ([]models.Permission, error) {
	var perms []models.Permission
	err := r.DB.WithContext(ctx).Model(&models.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.permission_id").
		Where("role_permissions.role_id = ?", roleID).
		Find(&perms).Error
	return perms, err
}

// UserHasPermission walks user -> roles -> permissions. Used for the
// fine-grained check path, never for token abilities.
func (r *GormRepo) UserHasPermission(ctx context.Context, userID uint, permissionName string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.permission_id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ? AND permissions.permission_name = ?", userID, permissionName).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRepo) UserHasRole(ctx context.Context, userID uint, roleName string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.role_id").
		Where("user_roles.user_id = ? AND roles.role_name = ?", userID, roleName).
		Count(&count).Error
	return count > 0, err
}
