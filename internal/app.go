package app

import (
	"go-identity-core/internal/config/env"
	"go-identity-core/internal/config/validation"
	"go-identity-core/internal/repository"
	"go-identity-core/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type BootstrapConfig struct {
	db         *gorm.DB
	log        *logrus.Logger
	config     *env.Config
	validation *validation.Validation
	redis      *redis.Client
}

// Core bundles the surfaces the embedding transport layer consumes:
// lifecycle CRUD, permission resolution, session authority, login facade
// and the authorization gate.
type Core struct {
	Lifecycle *service.LifecycleService
	Graph     *service.GraphService
	Sessions  *service.SessionService
	Auth      *service.AuthService
	Authz     *service.AuthzService
}

func NewApp(log *logrus.Logger, config *env.Config, db *gorm.DB, validation *validation.Validation, redis *redis.Client) *BootstrapConfig {
	return &BootstrapConfig{db, log, config, validation, redis}
}

func (app *BootstrapConfig) Bootstrap() *Core {
	// setup repositories
	userRepository := repository.NewUserRepository(app.db)
	roleRepository := repository.NewRoleRepository(app.db)
	permissionRepository := repository.NewPermissionRepository(app.db)
	assignmentRepository := repository.NewAssignmentRepository(app.db)
	sessionRepository := repository.NewSessionRepository(app.db)
	unitOfWork := repository.NewUnitOfWork(app.db)

	// setup services
	redisService := service.NewRedisService(app.redis, app.log)
	revocations := service.NewRevocationCache(redisService)
	jwtService := service.NewJwtService(app.log, app.config)
	graphService := service.NewGraphService(assignmentRepository, redisService, app.config, app.log)
	sessionService := service.NewSessionService(userRepository, sessionRepository, jwtService, revocations, app.config, app.log)
	verifier := service.NewBcryptVerifier()
	lifecycleService := service.NewLifecycleService(service.LifecycleDeps{
		UnitOfWork:  unitOfWork,
		Users:       userRepository,
		Roles:       roleRepository,
		Permissions: permissionRepository,
		Assignments: assignmentRepository,
		Sessions:    sessionRepository,
		Verifier:    verifier,
		Graph:       graphService,
		Revocations: revocations,
		Validation:  app.validation,
		Log:         app.log,
	})
	authService := service.NewAuthService(userRepository, sessionService, verifier, app.log)
	authzService := service.NewAuthzService(sessionService, graphService, app.log)

	return &Core{
		Lifecycle: lifecycleService,
		Graph:     graphService,
		Sessions:  sessionService,
		Auth:      authService,
		Authz:     authzService,
	}
}
