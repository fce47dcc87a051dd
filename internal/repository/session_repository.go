package repository

import (
	"context"
	"time"

	"go-identity-core/internal/model"

	"gorm.io/gorm"
)

// GormSessionRepository owns session rows. Sessions have no soft-delete
// lifecycle of their own; revocation is a one-way flag.
type GormSessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{DB: db}
}

func (r *GormSessionRepository) Create(ctx context.Context, session *model.Session) error {
	return translate(r.getDb(ctx).Create(session).Error)
}

func (r *GormSessionRepository) Save(ctx context.Context, session *model.Session) error {
	return translate(r.getDb(ctx).Save(session).Error)
}

func (r *GormSessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	session := new(model.Session)
	if err := r.getDb(ctx).Where("id = ?", id).Take(session).Error; err != nil {
		return nil, translate(err)
	}
	return session, nil
}

func (r *GormSessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	res := r.getDb(ctx).Model(&model.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormSessionRepository) RevokeAllForUser(ctx context.Context, userID string, at time.Time) ([]*model.Session, error) {
	db := r.getDb(ctx)

	var sessions []*model.Session
	if err := db.Where("user_id = ? AND revoked_at IS NULL", userID).Find(&sessions).Error; err != nil {
		return nil, translate(err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	if err := db.Model(&model.Session{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", at).Error; err != nil {
		return nil, translate(err)
	}

	for _, s := range sessions {
		revoked := at
		s.RevokedAt = &revoked
	}
	return sessions, nil
}

func (r *GormSessionRepository) ListForUser(ctx context.Context, userID string) ([]*model.Session, error) {
	var sessions []*model.Session
	err := r.getDb(ctx).Where("user_id = ?", userID).Order("issued_at").Find(&sessions).Error
	return sessions, translate(err)
}

func (r *GormSessionRepository) getDb(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return r.DB.WithContext(ctx)
}
