package service

import (
	"context"
	"errors"
	"time"

	"go-identity-core/internal/config/validation"
	"go-identity-core/internal/model"
	"go-identity-core/internal/repository"
	"go-identity-core/internal/utils/errcode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// LifecycleService enforces the shared entity state machine:
//
//	active --softDelete--> deleted --restore--> active
//	deleted --hardDelete--> (purged, terminal)
//
// Transitions outside this graph fail with ErrInvalidTransition or
// ErrPreconditionFailed. Cascades run inside one unit of work; permission
// cache versions are bumped after commit, before the call returns.
type LifecycleService struct {
	uow         repository.UnitOfWork
	users       repository.UserRepository
	roles       repository.RoleRepository
	permissions repository.PermissionRepository
	assignments repository.AssignmentRepository
	sessions    repository.SessionRepository
	verifier    CredentialVerifier
	graph       *GraphService
	revocations *RevocationCache
	validation  *validation.Validation
	log         *logrus.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// LifecycleDeps wires the service; every field is required except Verifier,
// which defaults to bcrypt.
type LifecycleDeps struct {
	UnitOfWork  repository.UnitOfWork
	Users       repository.UserRepository
	Roles       repository.RoleRepository
	Permissions repository.PermissionRepository
	Assignments repository.AssignmentRepository
	Sessions    repository.SessionRepository
	Verifier    CredentialVerifier
	Graph       *GraphService
	Revocations *RevocationCache
	Validation  *validation.Validation
	Log         *logrus.Logger
}

func NewLifecycleService(deps LifecycleDeps) *LifecycleService {
	if deps.Verifier == nil {
		deps.Verifier = NewBcryptVerifier()
	}
	return &LifecycleService{
		uow:         deps.UnitOfWork,
		users:       deps.Users,
		roles:       deps.Roles,
		permissions: deps.Permissions,
		assignments: deps.Assignments,
		sessions:    deps.Sessions,
		verifier:    deps.Verifier,
		graph:       deps.Graph,
		revocations: deps.Revocations,
		validation:  deps.Validation,
		log:         deps.Log,
		tracer:      otel.Tracer("LifecycleService"),
		now:         time.Now,
	}
}

type CreateUserInput struct {
	Email    string `json:"email" validate:"required,email,max=100"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

type UpdateUserInput struct {
	Email string `json:"email" validate:"required,email,max=100"`
	Name  string `json:"name" validate:"required,max=100"`
}

// CreateUser creates an active user. The email must be free among active
// users; soft-deleted users do not reserve their email.
func (s *LifecycleService) CreateUser(ctx context.Context, input *CreateUserInput) (*model.User, error) {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.CreateUser")
	defer span.End()

	logger := s.log.WithContext(spanCtx)

	if err := s.validation.Validate(input); err != nil {
		return nil, err
	}

	count, err := s.users.CountActiveByEmail(spanCtx, input.Email, "")
	if err != nil {
		logger.WithError(err).Error("Failed to check email existence")
		return nil, err
	}
	if count > 0 {
		logger.Warn("Attempt to create user with an existing email")
		return nil, errcode.ErrConflict
	}

	hash, err := s.verifier.Hash(input.Password)
	if err != nil {
		logger.WithError(err).Error("Failed to hash password")
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hash,
	}
	if err := s.users.Create(spanCtx, user); err != nil {
		logger.WithError(err).Error("Failed to create user")
		return nil, err
	}

	return user, nil
}

// GetUser retrieves an active user.
func (s *LifecycleService) GetUser(ctx context.Context, id string) (*model.User, error) {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.GetUser")
	defer span.End()

	user, err := s.users.FindByID(spanCtx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return user, nil
}

func (s *LifecycleService) ListUsers(ctx context.Context, q repository.ListQuery) ([]*model.User, int64, error) {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.ListUsers")
	defer span.End()

	return s.users.List(spanCtx, q)
}

// UpdateUser mutates an active user. Soft-deleted users cannot be updated;
// they must be restored first.
func (s *LifecycleService) UpdateUser(ctx context.Context, id string, input *UpdateUserInput) (*model.User, error) {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.UpdateUser")
	defer span.End()

	logger := s.log.WithContext(spanCtx)

	if err := s.validation.Validate(input); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(spanCtx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if user.Email != input.Email {
		count, err := s.users.CountActiveByEmail(spanCtx, input.Email, id)
		if err != nil {
			logger.WithError(err).Error("Failed to check email existence")
			return nil, err
		}
		if count > 0 {
			return nil, errcode.ErrConflict
		}
	}

	user.Email = input.Email
	user.Name = input.Name
	if err := s.users.Save(spanCtx, user); err != nil {
		logger.WithError(err).Error("Failed to update user")
		return nil, err
	}
	return user, nil
}

// SoftDeleteUser deactivates the user and revokes all of its sessions in
// the same transaction: a soft-deleted user holds no valid session.
func (s *LifecycleService) SoftDeleteUser(ctx context.Context, id string) error {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.SoftDeleteUser")
	defer span.End()

	logger := s.log.WithContext(spanCtx)

	user, err := s.users.FindByIDAny(spanCtx, id)
	if err != nil {
		return mapStoreErr(err)
	}
	if !user.Active() {
		return errcode.ErrInvalidTransition
	}

	var revoked []*model.Session
	err = s.uow.Do(spanCtx, func(txCtx context.Context) error {
		if err := s.users.SoftDelete(txCtx, id); err != nil {
			return mapStoreErr(err)
		}
		revoked, err = s.sessions.RevokeAllForUser(txCtx, id, s.now())
		return err
	})
	if err != nil {
		logger.WithError(err).Error("Failed to soft-delete user")
		return err
	}

	for _, session := range revoked {
		s.revocations.Add(spanCtx, session.ID, session.ExpiresAt)
	}
	s.graph.InvalidateUser(id)
	return nil
}

// RestoreUser returns a soft-deleted user to active. Restoring an active
// user is an idempotent no-op; restoring a purged user fails with NotFound.
func (s *LifecycleService) RestoreUser(ctx context.Context, id string) (*model.User, error) {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.RestoreUser")
	defer span.End()

	logger := s.log.WithContext(spanCtx)

	user, err := s.users.FindByIDAny(spanCtx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if user.Active() {
		return user, nil
	}

	count, err := s.users.CountActiveByEmail(spanCtx, user.Email, id)
	if err != nil {
		logger.WithError(err).Error("Failed to check email existence")
		return nil, err
	}
	if count > 0 {
		// The email was reclaimed while the user was deleted.
		return nil, errcode.ErrConflict
	}

	if err := s.users.Restore(spanCtx, id); err != nil {
		logger.WithError(err).Error("Failed to restore user")
		return nil, mapStoreErr(err)
	}

	s.graph.InvalidateUser(id)

	user, err = s.users.FindByID(spanCtx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return user, nil
}

// HardDeleteUser purges a soft-deleted user together with its role
// assignments and direct grants, and revokes its sessions. The cascade is
// one transaction: no reader observes a partially purged user.
func (s *LifecycleService) HardDeleteUser(ctx context.Context, id string) error {
	spanCtx, span := s.tracer.Start(ctx, "LifecycleService.HardDeleteUser")
	defer span.End()

	logger := s.log.WithContext(spanCtx)

	user, err := s.users.FindByIDAny(spanCtx, id)
	if err != nil {
		return mapStoreErr(err)
	}
	if user.Active() {
		return errcode.ErrPreconditionFailed
	}

	var revoked []*model.Session
	err = s.uow.Do(spanCtx, func(txCtx context.Context) error {
		revoked, err = s.sessions.RevokeAllForUser(txCtx, id, s.now())
		if err != nil {
			return err
		}
		if err := s.assignments.DeleteUserRolesByUser(txCtx, id); err != nil {
			return err
		}
		if err := s.assignments.DeleteUserPermissionsByUser(txCtx, id); err != nil {
			return err
		}
		return mapStoreErr(s.users.HardDelete(txCtx, id))
	})
	if err != nil {
		logger.WithError(err).Error("Failed to hard-delete user")
		return err
	}

	for _, session := range revoked {
		s.revocations.Add(spanCtx, session.ID, session.ExpiresAt)
	}
	s.graph.InvalidateUser(id)
	return nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errcode.ErrNotFound
	}
	return err
}
