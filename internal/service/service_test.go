package service

import (
	"context"
	"io"
	"testing"

	"go-identity-core/internal/config/env"
	"go-identity-core/internal/config/validation"
	"go-identity-core/internal/model"
	"go-identity-core/internal/repository/memory"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fixture wires the full core against the in-memory store.
type fixture struct {
	store     *memory.Store
	lifecycle *LifecycleService
	graph     *GraphService
	sessions  *SessionService
	auth      *AuthService
	authz     *AuthzService
	config    *env.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &env.Config{}
	cfg.Token.Secret = "test-secret"
	cfg.Token.TTLMinutes = 60

	log := silentLogger()
	store := memory.NewStore()

	redisService := NewRedisService(nil, log)
	revocations := NewRevocationCache(redisService)
	jwtService := NewJwtService(log, cfg)
	graph := NewGraphService(store.Assignments(), redisService, cfg, log)
	sessions := NewSessionService(store.Users(), store.Sessions(), jwtService, revocations, cfg, log)
	verifier := &BcryptVerifier{Cost: bcrypt.MinCost}
	lifecycle := NewLifecycleService(LifecycleDeps{
		UnitOfWork:  store.UnitOfWork(),
		Users:       store.Users(),
		Roles:       store.Roles(),
		Permissions: store.Permissions(),
		Assignments: store.Assignments(),
		Sessions:    store.Sessions(),
		Verifier:    verifier,
		Graph:       graph,
		Revocations: revocations,
		Validation:  validation.NewValidation(),
		Log:         log,
	})
	auth := NewAuthService(store.Users(), sessions, verifier, log)
	authz := NewAuthzService(sessions, graph, log)

	return &fixture{
		store:     store,
		lifecycle: lifecycle,
		graph:     graph,
		sessions:  sessions,
		auth:      auth,
		authz:     authz,
		config:    cfg,
	}
}

func silentLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func (f *fixture) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	user, err := f.lifecycle.CreateUser(context.Background(), &CreateUserInput{
		Email:    email,
		Name:     "Test User",
		Password: "password123",
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) createRole(t *testing.T, name string) *model.Role {
	t.Helper()
	role, err := f.lifecycle.CreateRole(context.Background(), &CreateRoleInput{Name: name})
	require.NoError(t, err)
	return role
}

func (f *fixture) createPermission(t *testing.T, name string) *model.Permission {
	t.Helper()
	permission, err := f.lifecycle.CreatePermission(context.Background(), &CreatePermissionInput{Name: name})
	require.NoError(t, err)
	return permission
}

// grantViaRole creates role+permission, wires them and assigns the role.
func (f *fixture) grantViaRole(t *testing.T, userID, roleName, permissionName string) (*model.Role, *model.Permission) {
	t.Helper()
	ctx := context.Background()
	role := f.createRole(t, roleName)
	permission := f.createPermission(t, permissionName)
	require.NoError(t, f.lifecycle.GrantPermissionToRole(ctx, role.ID, permission.ID))
	require.NoError(t, f.lifecycle.AssignRole(ctx, userID, role.ID))
	return role, permission
}
