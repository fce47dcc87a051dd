package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// GormRepository implements the shared EntityRepository lifecycle on top of
// GORM. Soft delete rides on gorm.DeletedAt: the default scope hides deleted
// rows, Unscoped exposes them, restore clears the timestamp in place.
type GormRepository[T any] struct {
	DB *gorm.DB
}

func (r *GormRepository[T]) Create(ctx context.Context, entity *T) error {
	return translate(r.getDb(ctx).Create(entity).Error)
}

func (r *GormRepository[T]) Save(ctx context.Context, entity *T) error {
	return translate(r.getDb(ctx).Save(entity).Error)
}

func (r *GormRepository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	entity := new(T)
	if err := r.getDb(ctx).Where("id = ?", id).Take(entity).Error; err != nil {
		return nil, translate(err)
	}
	return entity, nil
}

func (r *GormRepository[T]) FindByIDAny(ctx context.Context, id string) (*T, error) {
	entity := new(T)
	if err := r.getDb(ctx).Unscoped().Where("id = ?", id).Take(entity).Error; err != nil {
		return nil, translate(err)
	}
	return entity, nil
}

func (r *GormRepository[T]) List(ctx context.Context, q ListQuery) ([]*T, int64, error) {
	q = q.Normalize()
	db := r.scopedByStatus(ctx, q.Status)

	var entities []*T
	if err := db.Offset((q.Page - 1) * q.Size).Limit(q.Size).Order("created_at").Find(&entities).Error; err != nil {
		return nil, 0, translate(err)
	}

	var total int64
	if err := r.scopedByStatus(ctx, q.Status).Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	return entities, total, nil
}

func (r *GormRepository[T]) SoftDelete(ctx context.Context, id string) error {
	res := r.getDb(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository[T]) Restore(ctx context.Context, id string) error {
	res := r.getDb(ctx).Unscoped().Model(new(T)).Where("id = ?", id).Update("deleted_at", nil)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository[T]) HardDelete(ctx context.Context, id string) error {
	res := r.getDb(ctx).Unscoped().Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository[T]) scopedByStatus(ctx context.Context, status StatusFilter) *gorm.DB {
	db := r.getDb(ctx)
	switch status {
	case StatusDeleted:
		return db.Unscoped().Where("deleted_at IS NOT NULL")
	case StatusAny:
		return db.Unscoped()
	default:
		return db
	}
}

func (r *GormRepository[T]) getDb(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return r.DB.WithContext(ctx)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
