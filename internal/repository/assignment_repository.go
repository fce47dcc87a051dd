package repository

import (
	"context"

	"go-identity-core/internal/model"

	"gorm.io/gorm"
)

type GormAssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{DB: db}
}

func (r *GormAssignmentRepository) CreateUserRole(ctx context.Context, edge *model.UserRole) error {
	return translate(r.getDb(ctx).Create(edge).Error)
}

func (r *GormAssignmentRepository) UserRoleExists(ctx context.Context, userID, roleID string) (bool, error) {
	var total int64
	err := r.getDb(ctx).Model(&model.UserRole{}).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Count(&total).Error
	return total > 0, translate(err)
}

func (r *GormAssignmentRepository) DeleteUserRole(ctx context.Context, userID, roleID string) error {
	res := r.getDb(ctx).Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&model.UserRole{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormAssignmentRepository) DeleteUserRolesByUser(ctx context.Context, userID string) error {
	return translate(r.getDb(ctx).Where("user_id = ?", userID).Delete(&model.UserRole{}).Error)
}

func (r *GormAssignmentRepository) DeleteUserRolesByRole(ctx context.Context, roleID string) error {
	return translate(r.getDb(ctx).Where("role_id = ?", roleID).Delete(&model.UserRole{}).Error)
}

func (r *GormAssignmentRepository) CreateRolePermission(ctx context.Context, edge *model.RolePermission) error {
	return translate(r.getDb(ctx).Create(edge).Error)
}

func (r *GormAssignmentRepository) RolePermissionExists(ctx context.Context, roleID, permissionID string) (bool, error) {
	var total int64
	err := r.getDb(ctx).Model(&model.RolePermission{}).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Count(&total).Error
	return total > 0, translate(err)
}

func (r *GormAssignmentRepository) DeleteRolePermission(ctx context.Context, roleID, permissionID string) error {
	res := r.getDb(ctx).Where("role_id = ? AND permission_id = ?", roleID, permissionID).Delete(&model.RolePermission{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormAssignmentRepository) DeleteRolePermissionsByRole(ctx context.Context, roleID string) error {
	return translate(r.getDb(ctx).Where("role_id = ?", roleID).Delete(&model.RolePermission{}).Error)
}

func (r *GormAssignmentRepository) DeleteRolePermissionsByPermission(ctx context.Context, permissionID string) error {
	return translate(r.getDb(ctx).Where("permission_id = ?", permissionID).Delete(&model.RolePermission{}).Error)
}

func (r *GormAssignmentRepository) CreateUserPermission(ctx context.Context, edge *model.UserPermission) error {
	return translate(r.getDb(ctx).Create(edge).Error)
}

func (r *GormAssignmentRepository) UserPermissionExists(ctx context.Context, userID, permissionID string) (bool, error) {
	var total int64
	err := r.getDb(ctx).Model(&model.UserPermission{}).
		Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Count(&total).Error
	return total > 0, translate(err)
}

func (r *GormAssignmentRepository) DeleteUserPermission(ctx context.Context, userID, permissionID string) error {
	res := r.getDb(ctx).Where("user_id = ? AND permission_id = ?", userID, permissionID).Delete(&model.UserPermission{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormAssignmentRepository) DeleteUserPermissionsByUser(ctx context.Context, userID string) error {
	return translate(r.getDb(ctx).Where("user_id = ?", userID).Delete(&model.UserPermission{}).Error)
}

func (r *GormAssignmentRepository) DeleteUserPermissionsByPermission(ctx context.Context, permissionID string) error {
	return translate(r.getDb(ctx).Where("permission_id = ?", permissionID).Delete(&model.UserPermission{}).Error)
}

// ActiveRolePermissionNames walks active user -> active roles -> active
// permissions. Raw table joins bypass the soft-delete default scope, so the
// deleted_at predicates are spelled out.
func (r *GormAssignmentRepository) ActiveRolePermissionNames(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := r.getDb(ctx).Table("permissions").
		Distinct("permissions.name").
		Joins("INNER JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("INNER JOIN roles ON roles.id = role_permissions.role_id AND roles.deleted_at IS NULL").
		Joins("INNER JOIN user_roles ON user_roles.role_id = roles.id").
		Joins("INNER JOIN users ON users.id = user_roles.user_id AND users.deleted_at IS NULL").
		Where("user_roles.user_id = ? AND permissions.deleted_at IS NULL", userID).
		Pluck("permissions.name", &names).Error
	return names, translate(err)
}

func (r *GormAssignmentRepository) ActiveDirectGrants(ctx context.Context, userID string) ([]DirectGrant, error) {
	var grants []DirectGrant
	err := r.getDb(ctx).Table("user_permissions").
		Select("permissions.name AS permission_name, user_permissions.grant_type").
		Joins("INNER JOIN permissions ON permissions.id = user_permissions.permission_id AND permissions.deleted_at IS NULL").
		Joins("INNER JOIN users ON users.id = user_permissions.user_id AND users.deleted_at IS NULL").
		Where("user_permissions.user_id = ?", userID).
		Scan(&grants).Error
	return grants, translate(err)
}

func (r *GormAssignmentRepository) getDb(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return r.DB.WithContext(ctx)
}
