package service

import (
	"context"

	"go-identity-core/internal/model"
	"go-identity-core/internal/repository"
	"go-identity-core/internal/utils/errcode"

	"github.com/google/uuid"
)

type CreateRoleInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=255"`
}

type UpdateRoleInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=255"`
}

func (s *LifecycleService) CreateRole(ctx context.Context, input *CreateRoleInput) (*model.Role, error) {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.CreateRole")
	defer span.End()

	logger := s.log.WithContext(spanCtx)

	if err := s.validation.Validate(input); err != nil {
		return nil, err
	}

	count, err := s.roles.CountActiveByName(spanCtx, input.Name, "")
	if err != nil {
		logger.WithError(err).Error("Failed to check role name")
		return nil, err
	}
	if count > 0 {
		return nil, errcode.ErrConflict
	}

	role := &model.Role{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.roles.Create(spanCtx, role); err != nil {
		logger.WithError(err).Error("Failed to create role")
		return nil, err
	}
	return role, nil
}

func (s *LifecycleService) GetRole(ctx context.Context, id string) (*model.Role, error) {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.GetRole")
	defer span.End()

	role, err := s.roles.FindByID(spanCtx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return role, nil
}

func (s *LifecycleService) ListRoles(ctx context.Context, q repository.ListQuery) ([]*model.Role, int64, error) {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.ListRoles")
	defer span.End()

	return s.roles.List(spanCtx, q)
}

func (s *LifecycleService) UpdateRole(ctx context.Context, id string, input *UpdateRoleInput) (*model.Role, error) {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.UpdateRole")
	defer span.End()

	logger := s.log.WithContext(spanCtx)

	if err := s.validation.Validate(input); err != nil {
		return nil, err
	}

	role, err := s.roles.FindByID(spanCtx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if role.Name != input.Name {
		count, err := s.roles.CountActiveByName(spanCtx, input.Name, id)
		if err != nil {
			logger.WithError(err).Error("Failed to check role name")
			return nil, err
		}
		if count > 0 {
			return nil, errcode.ErrConflict
		}
	}

	role.Name = input.Name
	role.Description = input.Description
	if err := s.roles.Save(spanCtx, role); err != nil {
		logger.WithError(err).Error("Failed to update role")
		return nil, err
	}
	return role, nil
}

// SoftDeleteRole deactivates the role. Assignment edges stay in place but
// become inert for permission resolution.
func (s *LifecycleService) SoftDeleteRole(ctx context.Context, id string) error {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.SoftDeleteRole")
	defer span.End()

	role, err := s.roles.FindByIDAny(spanCtx, id)
	if err != nil {
		return mapStoreErr(err)
	}
	if !role.Active() {
		return errcode.ErrInvalidTransition
	}

	if err := s.roles.SoftDelete(spanCtx, id); err != nil {
		s.log.WithContext(spanCtx).WithError(err).Error("Failed to soft-delete role")
		return mapStoreErr(err)
	}

	s.graph.InvalidateAll()
	return nil
}

func (s *LifecycleService) RestoreRole(ctx context.Context, id string) (*model.Role, error) {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.RestoreRole")
	defer span.End()

	role, err := s.roles.FindByIDAny(spanCtx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if role.Active() {
		return role, nil
	}

	count, err := s.roles.CountActiveByName(spanCtx, role.Name, id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errcode.ErrConflict
	}

	if err := s.roles.Restore(spanCtx, id); err != nil {
		return nil, mapStoreErr(err)
	}

	s.graph.InvalidateAll()

	role, err = s.roles.FindByID(spanCtx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return role, nil
}

// HardDeleteRole purges a soft-deleted role and its assignment edges in one
// transaction, so no user's effective permissions can still reach it after
// commit.
func (s *LifecycleService) HardDeleteRole(ctx context.Context, id string) error {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.HardDeleteRole")
	defer span.End()

	role, err := s.roles.FindByIDAny(spanCtx, id)
	if err != nil {
		return mapStoreErr(err)
	}
	if role.Active() {
		return errcode.ErrPreconditionFailed
	}

	err = s.uow.Do(spanCtx, func(txCtx context.Context) error {
		if err := s.assignments.DeleteRolePermissionsByRole(txCtx, id); err != nil {
			return err
		}
		if err := s.assignments.DeleteUserRolesByRole(txCtx, id); err != nil {
			return err
		}
		return mapStoreErr(s.roles.HardDelete(txCtx, id))
	})
	if err != nil {
		s.log.WithContext(spanCtx).WithError(err).Error("Failed to hard-delete role")
		return err
	}

	s.graph.InvalidateAll()
	return nil
}

type CreatePermissionInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=255"`
}

type UpdatePermissionInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=255"`
}

func (s *LifecycleService) CreatePermission(ctx context.Context, input *CreatePermissionInput) (*model.Permission, error) {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.CreatePermission")
	defer span.End()

	logger := s.log.WithContext(spanCtx)

	if err := s.validation.Validate(input); err != nil {
		return nil, err
	}

	count, err := s.permissions.CountActiveByName(spanCtx, input.Name, "")
	if err != nil {
		logger.WithError(err).Error("Failed to check permission name")
		return nil, err
	}
	if count > 0 {
		return nil, errcode.ErrConflict
	}

	permission := &model.Permission{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.permissions.Create(spanCtx, permission); err != nil {
		logger.WithError(err).Error("Failed to create permission")
		return nil, err
	}
	return permission, nil
}

func (s *LifecycleService) GetPermission(ctx context.Context, id string) (*model.Permission, error) {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.GetPermission")
	defer span.End()

	permission, err := s.permissions.FindByID(spanCtx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return permission, nil
}

func (s *LifecycleService) ListPermissions(ctx context.Context, q repository.ListQuery) ([]*model.Permission, int64, error) {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.ListPermissions")
	defer span.End()

	return s.permissions.List(spanCtx, q)
}

func (s *LifecycleService) UpdatePermission(ctx context.Context, id string, input *UpdatePermissionInput) (*model.Permission, error) {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.UpdatePermission")
	defer span.End()

	logger := s.log.WithContext(spanCtx)

	if err := s.validation.Validate(input); err != nil {
		return nil, err
	}

	permission, err := s.permissions.FindByID(spanCtx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if permission.Name != input.Name {
		count, err := s.permissions.CountActiveByName(spanCtx, input.Name, id)
		if err != nil {
			logger.WithError(err).Error("Failed to check permission name")
			return nil, err
		}
		if count > 0 {
			return nil, errcode.ErrConflict
		}
	}

	permission.Name = input.Name
	permission.Description = input.Description
	if err := s.permissions.Save(spanCtx, permission); err != nil {
		logger.WithError(err).Error("Failed to update permission")
		return nil, err
	}

	// Renames change resolved names everywhere.
	s.graph.InvalidateAll()
	return permission, nil
}

func (s *LifecycleService) SoftDeletePermission(ctx context.Context, id string) error {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.SoftDeletePermission")
	defer span.End()

	permission, err := s.permissions.FindByIDAny(spanCtx, id)
	if err != nil {
		return mapStoreErr(err)
	}
	if !permission.Active() {
		return errcode.ErrInvalidTransition
	}

	if err := s.permissions.SoftDelete(spanCtx, id); err != nil {
		s.log.WithContext(spanCtx).WithError(err).Error("Failed to soft-delete permission")
		return mapStoreErr(err)
	}

	s.graph.InvalidateAll()
	return nil
}

func (s *LifecycleService) RestorePermission(ctx context.Context, id string) (*model.Permission, error) {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.RestorePermission")
	defer span.End()

	permission, err := s.permissions.FindByIDAny(spanCtx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if permission.Active() {
		return permission, nil
	}

	count, err := s.permissions.CountActiveByName(spanCtx, permission.Name, id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errcode.ErrConflict
	}

	if err := s.permissions.Restore(spanCtx, id); err != nil {
		return nil, mapStoreErr(err)
	}

	s.graph.InvalidateAll()

	permission, err = s.permissions.FindByID(spanCtx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return permission, nil
}

func (s *LifecycleService) HardDeletePermission(ctx context.Context, id string) error {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.HardDeletePermission")
	defer span.End()

	permission, err := s.permissions.FindByIDAny(spanCtx, id)
	if err != nil {
		return mapStoreErr(err)
	}
	if permission.Active() {
		return errcode.ErrPreconditionFailed
	}

	err = s.uow.Do(spanCtx, func(txCtx context.Context) error {
		if err := s.assignments.DeleteRolePermissionsByPermission(txCtx, id); err != nil {
			return err
		}
		if err := s.assignments.DeleteUserPermissionsByPermission(txCtx, id); err != nil {
			return err
		}
		return mapStoreErr(s.permissions.HardDelete(txCtx, id))
	})
	if err != nil {
		s.log.WithContext(spanCtx).WithError(err).Error("Failed to hard-delete permission")
		return err
	}

	s.graph.InvalidateAll()
	return nil
}
