package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           string         `gorm:"primaryKey;not null" json:"id"`
	Email        string         `gorm:"index;not null" json:"email"`
	PasswordHash string         `json:"-"`
	Name         string         `json:"name"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// Active reports whether the user has not been soft-deleted.
func (u *User) Active() bool {
	return !u.DeletedAt.Valid
}
