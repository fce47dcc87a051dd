package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go-identity-core/internal/config/env"
	"go-identity-core/internal/model"
	"go-identity-core/internal/repository"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// graphEntry is a resolved permission set stamped with the version counters
// it was computed under. An entry is served only while both counters still
// match, which gives read-your-writes without any TTL.
type graphEntry struct {
	userVersion   int64
	globalVersion int64
	permissions   []string
}

// GraphService resolves a user's effective permission set: the union of
// permissions of the user's active roles' active permissions, plus direct
// grants, minus direct denies. Assignment edges pointing at soft-deleted
// roles or permissions are inert.
//
// Caching is version-based. User-scoped writes (role assignment, direct
// grants) bump the user's counter; role/permission writes bump the global
// counter. The lifecycle manager bumps strictly after its transaction
// commits and before it returns, so a resolve that happens-after a write
// never observes the pre-write set.
type GraphService struct {
	assignments repository.AssignmentRepository
	cache       *lru.Cache[string, graphEntry]
	redis       *RedisService
	cacheTTL    time.Duration
	group       singleflight.Group
	log         *logrus.Logger
	tracer      trace.Tracer

	globalVersion atomic.Int64
	userVersions  sync.Map // userID -> *atomic.Int64
}

func NewGraphService(assignments repository.AssignmentRepository, redis *RedisService, config *env.Config, log *logrus.Logger) *GraphService {
	cache, err := lru.New[string, graphEntry](config.GetCacheSize())
	if err != nil {
		// Only reachable with a non-positive size, which GetCacheSize prevents.
		panic(err)
	}
	return &GraphService{
		assignments: assignments,
		cache:       cache,
		redis:       redis,
		cacheTTL:    config.GetCacheTTL(),
		log:         log,
		tracer:      otel.Tracer("GraphService"),
	}
}

// ResolveEffectivePermissions returns the user's effective permission
// names, sorted. A user with no grants resolves to an empty set, not an
// error; soft-deleted and unknown users likewise resolve empty.
func (s *GraphService) ResolveEffectivePermissions(ctx context.Context, userID string) ([]string, error) {
	spanCtx, span := s.tracer.Start(ctx, "GraphService.ResolveEffectivePermissions")
	defer span.End()

	for {
		userVersion, globalVersion := s.versions(userID)

		if entry, ok := s.cache.Get(userID); ok &&
			entry.userVersion == userVersion && entry.globalVersion == globalVersion {
			return entry.permissions, nil
		}

		v, err, _ := s.group.Do(userID, func() (interface{}, error) {
			return s.fill(spanCtx, userID)
		})
		if err != nil {
			return nil, err
		}

		entry := v.(graphEntry)
		// A joined flight may carry a result computed before a concurrent
		// write committed. Only accept results at least as fresh as the
		// versions observed at the top of this iteration.
		if entry.userVersion >= userVersion && entry.globalVersion >= globalVersion {
			return entry.permissions, nil
		}
	}
}

// HasPermission resolves and checks membership.
func (s *GraphService) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	permissions, err := s.ResolveEffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range permissions {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

// InvalidateUser bumps the user's version counter. Called after commits of
// user-scoped writes: role assignment changes and direct grant changes.
func (s *GraphService) InvalidateUser(userID string) {
	s.userVersion(userID).Add(1)
}

// InvalidateAll bumps the global version counter. Called after commits of
// role or permission writes, whose blast radius spans users.
func (s *GraphService) InvalidateAll() {
	s.globalVersion.Add(1)
}

func (s *GraphService) fill(ctx context.Context, userID string) (graphEntry, error) {
	// Snapshot versions before touching the store: a write landing between
	// here and the reads bumps past this snapshot and voids the entry.
	userVersion, globalVersion := s.versions(userID)

	redisKey := fmt.Sprintf("authz:perms:%s:%d:%d", userID, userVersion, globalVersion)
	if cached, ok := s.redis.Get(ctx, redisKey); ok {
		var permissions []string
		if err := json.Unmarshal([]byte(cached), &permissions); err == nil {
			entry := graphEntry{userVersion, globalVersion, permissions}
			s.cache.Add(userID, entry)
			return entry, nil
		}
	}

	roleNames, err := s.assignments.ActiveRolePermissionNames(ctx, userID)
	if err != nil {
		s.log.WithContext(ctx).WithError(err).Error("Failed to resolve role permissions")
		return graphEntry{}, err
	}
	directGrants, err := s.assignments.ActiveDirectGrants(ctx, userID)
	if err != nil {
		s.log.WithContext(ctx).WithError(err).Error("Failed to resolve direct grants")
		return graphEntry{}, err
	}

	set := make(map[string]struct{}, len(roleNames))
	for _, name := range roleNames {
		set[name] = struct{}{}
	}
	for _, grant := range directGrants {
		if grant.Grant == model.GrantTypeGrant {
			set[grant.PermissionName] = struct{}{}
		}
	}
	for _, grant := range directGrants {
		if grant.Grant == model.GrantTypeDeny {
			delete(set, grant.PermissionName)
		}
	}

	permissions := make([]string, 0, len(set))
	for name := range set {
		permissions = append(permissions, name)
	}
	sort.Strings(permissions)

	entry := graphEntry{userVersion, globalVersion, permissions}
	s.cache.Add(userID, entry)
	// Redis entries embed the versions in their key, so a bump simply
	// orphans them; the TTL is garbage collection, not correctness.
	_ = s.redis.Set(ctx, redisKey, permissions, s.cacheTTL)

	return entry, nil
}

func (s *GraphService) versions(userID string) (int64, int64) {
	return s.userVersion(userID).Load(), s.globalVersion.Load()
}

func (s *GraphService) userVersion(userID string) *atomic.Int64 {
	if v, ok := s.userVersions.Load(userID); ok {
		return v.(*atomic.Int64)
	}
	v, _ := s.userVersions.LoadOrStore(userID, new(atomic.Int64))
	return v.(*atomic.Int64)
}
