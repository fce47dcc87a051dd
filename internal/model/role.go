package model

import (
	"time"

	"gorm.io/gorm"
)

type Role struct {
	ID          string         `gorm:"primaryKey;not null" json:"id"`
	Name        string         `gorm:"index;not null" json:"name"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (r *Role) Active() bool {
	return !r.DeletedAt.Valid
}
