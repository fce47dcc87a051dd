package repository

import (
	"context"

	"gorm.io/gorm"
)

// GormUnitOfWork runs fn within a database transaction. It begins the
// transaction, injects it into the context so repositories pick it up via
// getDb, and commits or rolls back based on fn's result.
type GormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, TxKey, tx))
	})
}
