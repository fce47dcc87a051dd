package memory

import (
	"context"
	"sort"

	"go-identity-core/internal/model"
	"go-identity-core/internal/repository"
)

type assignmentRepo struct {
	store *Store
}

func (r *assignmentRepo) CreateUserRole(ctx context.Context, edge *model.UserRole) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = r.store.now()
	}
	r.store.userRoles[edge.ID] = *edge
	return nil
}

func (r *assignmentRepo) UserRoleExists(ctx context.Context, userID, roleID string) (bool, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	for _, e := range r.store.userRoles {
		if e.UserID == userID && e.RoleID == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (r *assignmentRepo) DeleteUserRole(ctx context.Context, userID, roleID string) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	for id, e := range r.store.userRoles {
		if e.UserID == userID && e.RoleID == roleID {
			delete(r.store.userRoles, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *assignmentRepo) DeleteUserRolesByUser(ctx context.Context, userID string) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	for id, e := range r.store.userRoles {
		if e.UserID == userID {
			delete(r.store.userRoles, id)
		}
	}
	return nil
}

func (r *assignmentRepo) DeleteUserRolesByRole(ctx context.Context, roleID string) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	for id, e := range r.store.userRoles {
		if e.RoleID == roleID {
			delete(r.store.userRoles, id)
		}
	}
	return nil
}

func (r *assignmentRepo) CreateRolePermission(ctx context.Context, edge *model.RolePermission) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = r.store.now()
	}
	r.store.rolePermissions[edge.ID] = *edge
	return nil
}

func (r *assignmentRepo) RolePermissionExists(ctx context.Context, roleID, permissionID string) (bool, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	for _, e := range r.store.rolePermissions {
		if e.RoleID == roleID && e.PermissionID == permissionID {
			return true, nil
		}
	}
	return false, nil
}

func (r *assignmentRepo) DeleteRolePermission(ctx context.Context, roleID, permissionID string) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	for id, e := range r.store.rolePermissions {
		if e.RoleID == roleID && e.PermissionID == permissionID {
			delete(r.store.rolePermissions, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *assignmentRepo) DeleteRolePermissionsByRole(ctx context.Context, roleID string) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	for id, e := range r.store.rolePermissions {
		if e.RoleID == roleID {
			delete(r.store.rolePermissions, id)
		}
	}
	return nil
}

func (r *assignmentRepo) DeleteRolePermissionsByPermission(ctx context.Context, permissionID string) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	for id, e := range r.store.rolePermissions {
		if e.PermissionID == permissionID {
			delete(r.store.rolePermissions, id)
		}
	}
	return nil
}

func (r *assignmentRepo) CreateUserPermission(ctx context.Context, edge *model.UserPermission) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = r.store.now()
	}
	r.store.userPermissions[edge.ID] = *edge
	return nil
}

func (r *assignmentRepo) UserPermissionExists(ctx context.Context, userID, permissionID string) (bool, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	for _, e := range r.store.userPermissions {
		if e.UserID == userID && e.PermissionID == permissionID {
			return true, nil
		}
	}
	return false, nil
}

func (r *assignmentRepo) DeleteUserPermission(ctx context.Context, userID, permissionID string) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	for id, e := range r.store.userPermissions {
		if e.UserID == userID && e.PermissionID == permissionID {
			delete(r.store.userPermissions, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *assignmentRepo) DeleteUserPermissionsByUser(ctx context.Context, userID string) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	for id, e := range r.store.userPermissions {
		if e.UserID == userID {
			delete(r.store.userPermissions, id)
		}
	}
	return nil
}

func (r *assignmentRepo) DeleteUserPermissionsByPermission(ctx context.Context, permissionID string) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	for id, e := range r.store.userPermissions {
		if e.PermissionID == permissionID {
			delete(r.store.userPermissions, id)
		}
	}
	return nil
}

func (r *assignmentRepo) ActiveRolePermissionNames(ctx context.Context, userID string) ([]string, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	if user, ok := r.store.users[userID]; !ok || !user.Active() {
		return nil, nil
	}

	seen := make(map[string]struct{})
	for _, ur := range r.store.userRoles {
		if ur.UserID != userID {
			continue
		}
		role, ok := r.store.roles[ur.RoleID]
		if !ok || !role.Active() {
			continue
		}
		for _, rp := range r.store.rolePermissions {
			if rp.RoleID != role.ID {
				continue
			}
			perm, ok := r.store.permissions[rp.PermissionID]
			if !ok || !perm.Active() {
				continue
			}
			seen[perm.Name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *assignmentRepo) ActiveDirectGrants(ctx context.Context, userID string) ([]repository.DirectGrant, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	if user, ok := r.store.users[userID]; !ok || !user.Active() {
		return nil, nil
	}

	var grants []repository.DirectGrant
	for _, up := range r.store.userPermissions {
		if up.UserID != userID {
			continue
		}
		perm, ok := r.store.permissions[up.PermissionID]
		if !ok || !perm.Active() {
			continue
		}
		grants = append(grants, repository.DirectGrant{
			PermissionName: perm.Name,
			Grant:          up.Grant,
		})
	}
	return grants, nil
}
