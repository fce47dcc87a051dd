// Package memory is an in-process implementation of the repository
// contracts. It backs tests and embeddings that run without Postgres, the
// same way the token blacklist ships a map-backed twin of its Redis form.
package memory

import (
	"context"
	"sync"
	"time"

	"go-identity-core/internal/model"
	"go-identity-core/internal/repository"
)

type Store struct {
	mu sync.RWMutex

	users           map[string]model.User
	roles           map[string]model.Role
	permissions     map[string]model.Permission
	userRoles       map[string]model.UserRole
	rolePermissions map[string]model.RolePermission
	userPermissions map[string]model.UserPermission
	sessions        map[string]model.Session

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:           make(map[string]model.User),
		roles:           make(map[string]model.Role),
		permissions:     make(map[string]model.Permission),
		userRoles:       make(map[string]model.UserRole),
		rolePermissions: make(map[string]model.RolePermission),
		userPermissions: make(map[string]model.UserPermission),
		sessions:        make(map[string]model.Session),
		now:             time.Now,
	}
}

func (s *Store) Users() repository.UserRepository             { return &userRepo{newEntityRepo(s, s.users, userMeta)} }
func (s *Store) Roles() repository.RoleRepository             { return &roleRepo{newEntityRepo(s, s.roles, roleMeta)} }
func (s *Store) Permissions() repository.PermissionRepository { return &permissionRepo{newEntityRepo(s, s.permissions, permissionMeta)} }
func (s *Store) Assignments() repository.AssignmentRepository { return &assignmentRepo{s} }
func (s *Store) Sessions() repository.SessionRepository       { return &sessionRepo{s} }
func (s *Store) UnitOfWork() repository.UnitOfWork            { return &unitOfWork{s} }

type txToken struct{}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(repository.TxKey).(txToken)
	return ok
}

// rlock acquires a read lock unless the context already runs inside a unit
// of work, which holds the write lock for its whole body.
func (s *Store) rlock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// unitOfWork serializes the whole body under the store's write lock, so no
// concurrent reader observes a half-applied cascade.
type unitOfWork struct {
	store *Store
}

func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return fn(context.WithValue(ctx, repository.TxKey, txToken{}))
}
