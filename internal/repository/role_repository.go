package repository

import (
	"context"

	"go-identity-core/internal/model"

	"gorm.io/gorm"
)

type GormRoleRepository struct {
	GormRepository[model.Role]
}

func NewRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{GormRepository[model.Role]{DB: db}}
}

func (r *GormRoleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	role := new(model.Role)
	if err := r.getDb(ctx).Where("name = ?", name).Take(role).Error; err != nil {
		return nil, translate(err)
	}
	return role, nil
}

// CountActiveByName counts active roles holding the name. Names are unique
// among non-deleted roles only.
func (r *GormRoleRepository) CountActiveByName(ctx context.Context, name string, excludeID string) (int64, error) {
	var total int64
	db := r.getDb(ctx).Model(&model.Role{}).Where("name = ?", name)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	err := db.Count(&total).Error
	return total, translate(err)
}
