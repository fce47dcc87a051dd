package model

import "time"

// Assignment edges are first-class records rather than embedded arrays so
// cascade deletion can target them atomically.

type UserRole struct {
	ID        string    `gorm:"primaryKey;not null" json:"id"`
	UserID    string    `gorm:"index:idx_user_roles_user_role,unique;not null" json:"user_id"`
	RoleID    string    `gorm:"index:idx_user_roles_user_role,unique;not null" json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

type RolePermission struct {
	ID           string    `gorm:"primaryKey;not null" json:"id"`
	RoleID       string    `gorm:"index:idx_role_permissions_role_perm,unique;not null" json:"role_id"`
	PermissionID string    `gorm:"index:idx_role_permissions_role_perm,unique;not null" json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type GrantType string

const (
	GrantTypeGrant GrantType = "grant"
	GrantTypeDeny  GrantType = "deny"
)

// UserPermission is a direct per-user override. A "deny" edge removes the
// permission from the effective set even when a role grants it.
type UserPermission struct {
	ID           string    `gorm:"primaryKey;not null" json:"id"`
	UserID       string    `gorm:"index:idx_user_permissions_user_perm,unique;not null" json:"user_id"`
	PermissionID string    `gorm:"index:idx_user_permissions_user_perm,unique;not null" json:"permission_id"`
	Grant        GrantType `gorm:"column:grant_type;not null;default:grant" json:"grant"`
	CreatedAt    time.Time `json:"created_at"`
}
