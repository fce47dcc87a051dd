package repository

import (
	"context"

	"go-identity-core/internal/model"

	"gorm.io/gorm"
)

type GormPermissionRepository struct {
	GormRepository[model.Permission]
}

func NewPermissionRepository(db *gorm.DB) *GormPermissionRepository {
	return &GormPermissionRepository{GormRepository[model.Permission]{DB: db}}
}

func (r *GormPermissionRepository) FindByName(ctx context.Context, name string) (*model.Permission, error) {
	permission := new(model.Permission)
	if err := r.getDb(ctx).Where("name = ?", name).Take(permission).Error; err != nil {
		return nil, translate(err)
	}
	return permission, nil
}

func (r *GormPermissionRepository) CountActiveByName(ctx context.Context, name string, excludeID string) (int64, error) {
	var total int64
	db := r.getDb(ctx).Model(&model.Permission{}).Where("name = ?", name)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	err := db.Count(&total).Error
	return total, translate(err)
}
