package repository

import (
	"context"
	"errors"
	"time"

	"go-identity-core/internal/model"
)

type contextKey string

// TxKey carries the active transaction through context so repositories join
// it transparently. Set by UnitOfWork.Do.
var TxKey contextKey = "tx"

// ErrNotFound is the storage-level absence signal. Services translate it
// into the application taxonomy.
var ErrNotFound = errors.New("record not found")

// StatusFilter selects which lifecycle states a List call returns.
type StatusFilter string

const (
	StatusActive  StatusFilter = "active"
	StatusDeleted StatusFilter = "deleted"
	StatusAny     StatusFilter = "any"
)

type ListQuery struct {
	Page   int
	Size   int
	Status StatusFilter
}

func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 {
		q.Size = 20
	}
	if q.Status == "" {
		q.Status = StatusActive
	}
	return q
}

// EntityRepository is the shared lifecycle contract for User, Role and
// Permission records. Read methods come in two capabilities: the plain
// variant sees active records only, the Any variant includes soft-deleted
// rows. Callers that need deleted rows must ask for them explicitly.
type EntityRepository[T any] interface {
	Create(ctx context.Context, entity *T) error
	Save(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id string) (*T, error)
	FindByIDAny(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, q ListQuery) ([]*T, int64, error)
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
}

type UserRepository interface {
	EntityRepository[model.User]
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	CountActiveByEmail(ctx context.Context, email string, excludeID string) (int64, error)
}

type RoleRepository interface {
	EntityRepository[model.Role]
	FindByName(ctx context.Context, name string) (*model.Role, error)
	CountActiveByName(ctx context.Context, name string, excludeID string) (int64, error)
}

type PermissionRepository interface {
	EntityRepository[model.Permission]
	FindByName(ctx context.Context, name string) (*model.Permission, error)
	CountActiveByName(ctx context.Context, name string, excludeID string) (int64, error)
}

// DirectGrant is a user-level permission override joined with the active
// permission name.
type DirectGrant struct {
	PermissionName string          `gorm:"column:permission_name"`
	Grant          model.GrantType `gorm:"column:grant_type"`
}

// AssignmentRepository owns the explicit many-to-many edge records.
type AssignmentRepository interface {
	CreateUserRole(ctx context.Context, edge *model.UserRole) error
	UserRoleExists(ctx context.Context, userID, roleID string) (bool, error)
	DeleteUserRole(ctx context.Context, userID, roleID string) error
	DeleteUserRolesByUser(ctx context.Context, userID string) error
	DeleteUserRolesByRole(ctx context.Context, roleID string) error

	CreateRolePermission(ctx context.Context, edge *model.RolePermission) error
	RolePermissionExists(ctx context.Context, roleID, permissionID string) (bool, error)
	DeleteRolePermission(ctx context.Context, roleID, permissionID string) error
	DeleteRolePermissionsByRole(ctx context.Context, roleID string) error
	DeleteRolePermissionsByPermission(ctx context.Context, permissionID string) error

	CreateUserPermission(ctx context.Context, edge *model.UserPermission) error
	UserPermissionExists(ctx context.Context, userID, permissionID string) (bool, error)
	DeleteUserPermission(ctx context.Context, userID, permissionID string) error
	DeleteUserPermissionsByUser(ctx context.Context, userID string) error
	DeleteUserPermissionsByPermission(ctx context.Context, permissionID string) error

	// ActiveRolePermissionNames returns the names of active permissions
	// reachable through the user's active role assignments. Edges pointing
	// at soft-deleted roles or permissions are skipped even though the edge
	// rows remain, and a soft-deleted or unknown user yields nothing.
	ActiveRolePermissionNames(ctx context.Context, userID string) ([]string, error)
	// ActiveDirectGrants returns the user's direct overrides whose target
	// permission is active. Empty for soft-deleted and unknown users.
	ActiveDirectGrants(ctx context.Context, userID string) ([]DirectGrant, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	Save(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	// RevokeAllForUser marks every live session of the user revoked and
	// returns the affected sessions so callers can propagate revocations
	// to fast-path caches.
	RevokeAllForUser(ctx context.Context, userID string, at time.Time) ([]*model.Session, error)
	ListForUser(ctx context.Context, userID string) ([]*model.Session, error)
}

// UnitOfWork runs fn inside a single transaction. Repositories called with
// the derived context join the same transaction, so cascades commit or roll
// back as one.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
