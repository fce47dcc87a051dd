package repository

import (
	"context"

	"go-identity-core/internal/model"

	"gorm.io/gorm"
)

type GormUserRepository struct {
	GormRepository[model.User]
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{GormRepository[model.User]{DB: db}}
}

// FindByEmail finds an active user by email.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := new(model.User)
	if err := r.getDb(ctx).Where("email = ?", email).Take(user).Error; err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// CountActiveByEmail counts active users holding the email, excluding the
// given ID when non-empty. Soft-deleted rows do not reserve an email.
func (r *GormUserRepository) CountActiveByEmail(ctx context.Context, email string, excludeID string) (int64, error) {
	var total int64
	db := r.getDb(ctx).Model(&model.User{}).Where("email = ?", email)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	err := db.Count(&total).Error
	return total, translate(err)
}
