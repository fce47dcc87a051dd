package service

import (
	"context"
	"errors"

	"go-identity-core/internal/model"
	"go-identity-core/internal/repository"
	"go-identity-core/internal/utils/errcode"

	"github.com/google/uuid"
)

// AssignRole attaches an active role to an active user. Duplicate
// assignments fail with Conflict.
func (s *LifecycleService) AssignRole(ctx context.Context, userID, roleID string) error {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.AssignRole")
	defer span.End()

	if _, err := s.users.FindByID(spanCtx, userID); err != nil {
		return mapStoreErr(err)
	}
	if _, err := s.roles.FindByID(spanCtx, roleID); err != nil {
		return mapStoreErr(err)
	}

	exists, err := s.assignments.UserRoleExists(spanCtx, userID, roleID)
	if err != nil {
		return err
	}
	if exists {
		return errcode.ErrConflict
	}

	edge := &model.UserRole{
		ID:     uuid.New().String(),
		UserID: userID,
		RoleID: roleID,
	}
	if err := s.assignments.CreateUserRole(spanCtx, edge); err != nil {
		s.log.WithContext(spanCtx).WithError(err).Error("Failed to assign role")
		return err
	}

	s.graph.InvalidateUser(userID)
	return nil
}

func (s *LifecycleService) UnassignRole(ctx context.Context, userID, roleID string) error {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.UnassignRole")
	defer span.End()

	if err := s.assignments.DeleteUserRole(spanCtx, userID, roleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errcode.ErrNotFound
		}
		return err
	}

	s.graph.InvalidateUser(userID)
	return nil
}

// GrantPermissionToRole attaches an active permission to an active role.
func (s *LifecycleService) GrantPermissionToRole(ctx context.Context, roleID, permissionID string) error {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.GrantPermissionToRole")
	defer span.End()

	if _, err := s.roles.FindByID(spanCtx, roleID); err != nil {
		return mapStoreErr(err)
	}
	if _, err := s.permissions.FindByID(spanCtx, permissionID); err != nil {
		return mapStoreErr(err)
	}

	exists, err := s.assignments.RolePermissionExists(spanCtx, roleID, permissionID)
	if err != nil {
		return err
	}
	if exists {
		return errcode.ErrConflict
	}

	edge := &model.RolePermission{
		ID:           uuid.New().String(),
		RoleID:       roleID,
		PermissionID: permissionID,
	}
	if err := s.assignments.CreateRolePermission(spanCtx, edge); err != nil {
		s.log.WithContext(spanCtx).WithError(err).Error("Failed to grant permission to role")
		return err
	}

	// The role may be assigned to any number of users.
	s.graph.InvalidateAll()
	return nil
}

func (s *LifecycleService) RevokePermissionFromRole(ctx context.Context, roleID, permissionID string) error {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.RevokePermissionFromRole")
	defer span.End()

	if err := s.assignments.DeleteRolePermission(spanCtx, roleID, permissionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errcode.ErrNotFound
		}
		return err
	}

	s.graph.InvalidateAll()
	return nil
}

// GrantPermissionToUser records a direct per-user override. A deny wins
// over any role-derived grant of the same permission.
func (s *LifecycleService) GrantPermissionToUser(ctx context.Context, userID, permissionID string, grant model.GrantType) error {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.GrantPermissionToUser")
	defer span.End()

	if grant != model.GrantTypeGrant && grant != model.GrantTypeDeny {
		return errcode.ErrPreconditionFailed
	}

	if _, err := s.users.FindByID(spanCtx, userID); err != nil {
		return mapStoreErr(err)
	}
	if _, err := s.permissions.FindByID(spanCtx, permissionID); err != nil {
		return mapStoreErr(err)
	}

	exists, err := s.assignments.UserPermissionExists(spanCtx, userID, permissionID)
	if err != nil {
		return err
	}
	if exists {
		return errcode.ErrConflict
	}

	edge := &model.UserPermission{
		ID:           uuid.New().String(),
		UserID:       userID,
		PermissionID: permissionID,
		Grant:        grant,
	}
	if err := s.assignments.CreateUserPermission(spanCtx, edge); err != nil {
		s.log.WithContext(spanCtx).WithError(err).Error("Failed to grant permission to user")
		return err
	}

	s.graph.InvalidateUser(userID)
	return nil
}

func (s *LifecycleService) RevokePermissionFromUser(ctx context.Context, userID, permissionID string) error {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.RevokePermissionFromUser")
	defer span.End()

	if err := s.assignments.DeleteUserPermission(spanCtx, userID, permissionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errcode.ErrNotFound
		}
		return err
	}

	s.graph.InvalidateUser(userID)
	return nil
}
