package service

import (
	"context"
	"sync"
	"testing"

	"go-identity-core/internal/model"

	"github.com/stretchr/testify/require"
)

func TestResolveEffectivePermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "grace@example.com")

	t.Run("no grants resolves empty", func(t *testing.T) {
		permissions, err := f.graph.ResolveEffectivePermissions(ctx, user.ID)
		require.NoError(t, err)
		require.Empty(t, permissions)
	})

	t.Run("unknown user resolves empty", func(t *testing.T) {
		permissions, err := f.graph.ResolveEffectivePermissions(ctx, "no-such-user")
		require.NoError(t, err)
		require.Empty(t, permissions)
	})

	// Two roles with an overlapping permission: the result is a sorted union.
	editor := f.createRole(t, "editor")
	reviewer := f.createRole(t, "reviewer")
	read := f.createPermission(t, "posts:read")
	write := f.createPermission(t, "posts:write")
	approve := f.createPermission(t, "posts:approve")

	require.NoError(t, f.lifecycle.GrantPermissionToRole(ctx, editor.ID, read.ID))
	require.NoError(t, f.lifecycle.GrantPermissionToRole(ctx, editor.ID, write.ID))
	require.NoError(t, f.lifecycle.GrantPermissionToRole(ctx, reviewer.ID, read.ID))
	require.NoError(t, f.lifecycle.GrantPermissionToRole(ctx, reviewer.ID, approve.ID))
	require.NoError(t, f.lifecycle.AssignRole(ctx, user.ID, editor.ID))
	require.NoError(t, f.lifecycle.AssignRole(ctx, user.ID, reviewer.ID))

	permissions, err := f.graph.ResolveEffectivePermissions(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"posts:approve", "posts:read", "posts:write"}, permissions)

	t.Run("soft-deleted role edges are inert", func(t *testing.T) {
		require.NoError(t, f.lifecycle.SoftDeleteRole(ctx, reviewer.ID))
		permissions, err := f.graph.ResolveEffectivePermissions(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"posts:read", "posts:write"}, permissions)

		_, err = f.lifecycle.RestoreRole(ctx, reviewer.ID)
		require.NoError(t, err)
		permissions, err = f.graph.ResolveEffectivePermissions(ctx, user.ID)
		require.NoError(t, err)
		require.Contains(t, permissions, "posts:approve")
	})

	t.Run("soft-deleted permission edges are inert", func(t *testing.T) {
		require.NoError(t, f.lifecycle.SoftDeletePermission(ctx, approve.ID))
		permissions, err := f.graph.ResolveEffectivePermissions(ctx, user.ID)
		require.NoError(t, err)
		require.NotContains(t, permissions, "posts:approve")

		_, err = f.lifecycle.RestorePermission(ctx, approve.ID)
		require.NoError(t, err)
	})

	t.Run("unassigning a role removes its permissions", func(t *testing.T) {
		require.NoError(t, f.lifecycle.UnassignRole(ctx, user.ID, reviewer.ID))
		permissions, err := f.graph.ResolveEffectivePermissions(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"posts:read", "posts:write"}, permissions)
	})
}

func TestDirectGrantsAndDenies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "heidi@example.com")
	_, write := f.grantViaRole(t, user.ID, "editor", "posts:write")

	extra := f.createPermission(t, "posts:publish")
	require.NoError(t, f.lifecycle.GrantPermissionToUser(ctx, user.ID, extra.ID, model.GrantTypeGrant))

	permissions, err := f.graph.ResolveEffectivePermissions(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"posts:publish", "posts:write"}, permissions)

	t.Run("deny overrides a role grant", func(t *testing.T) {
		require.NoError(t, f.lifecycle.GrantPermissionToUser(ctx, user.ID, write.ID, model.GrantTypeDeny))
		permissions, err := f.graph.ResolveEffectivePermissions(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"posts:publish"}, permissions)
	})

	t.Run("removing the deny restores the role grant", func(t *testing.T) {
		require.NoError(t, f.lifecycle.RevokePermissionFromUser(ctx, user.ID, write.ID))
		allowed, err := f.graph.HasPermission(ctx, user.ID, "posts:write")
		require.NoError(t, err)
		require.True(t, allowed)
	})

	t.Run("bad grant type rejected", func(t *testing.T) {
		err := f.lifecycle.GrantPermissionToUser(ctx, user.ID, extra.ID, model.GrantType("maybe"))
		require.Error(t, err)
	})
}

// The grant is visible immediately after the mutating call returns, and the
// revocation likewise: no stale cache window.
func TestGrantVisibilityAfterWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "ivan@example.com")
	role := f.createRole(t, "editor")
	write := f.createPermission(t, "posts:write")

	// Warm the cache with the empty set.
	allowed, err := f.graph.HasPermission(ctx, user.ID, "posts:write")
	require.NoError(t, err)
	require.False(t, allowed)

	require.NoError(t, f.lifecycle.GrantPermissionToRole(ctx, role.ID, write.ID))
	require.NoError(t, f.lifecycle.AssignRole(ctx, user.ID, role.ID))

	allowed, err = f.graph.HasPermission(ctx, user.ID, "posts:write")
	require.NoError(t, err)
	require.True(t, allowed)

	require.NoError(t, f.lifecycle.RevokePermissionFromRole(ctx, role.ID, write.ID))

	allowed, err = f.graph.HasPermission(ctx, user.ID, "posts:write")
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestHardDeleteRoleRemovesGrants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "judy@example.com")
	role, write := f.grantViaRole(t, user.ID, "editor", "posts:write")

	require.NoError(t, f.lifecycle.SoftDeleteRole(ctx, role.ID))
	require.NoError(t, f.lifecycle.HardDeleteRole(ctx, role.ID))

	permissions, err := f.graph.ResolveEffectivePermissions(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, permissions)

	exists, err := f.store.Assignments().RolePermissionExists(ctx, role.ID, write.ID)
	require.NoError(t, err)
	require.False(t, exists)

	exists, err = f.store.Assignments().UserRoleExists(ctx, user.ID, role.ID)
	require.NoError(t, err)
	require.False(t, exists)
}

// Soft-deleted users are excluded from resolution outright, even though
// their edge rows survive for a later restore.
func TestSoftDeletedUserResolvesEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "paused@example.com")
	_, extra := f.grantViaRole(t, user.ID, "editor", "posts:write")
	require.NoError(t, f.lifecycle.GrantPermissionToUser(ctx, user.ID, extra.ID, model.GrantTypeGrant))

	allowed, err := f.graph.HasPermission(ctx, user.ID, "posts:write")
	require.NoError(t, err)
	require.True(t, allowed)

	require.NoError(t, f.lifecycle.SoftDeleteUser(ctx, user.ID))

	permissions, err := f.graph.ResolveEffectivePermissions(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, permissions)

	// Restore brings the surviving edges back into effect.
	_, err = f.lifecycle.RestoreUser(ctx, user.ID)
	require.NoError(t, err)
	permissions, err = f.graph.ResolveEffectivePermissions(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"posts:write"}, permissions)
}

// The Redis tier keys entries by version, so an invalidation simply orphans
// the old key instead of racing a delete.
func TestGraphRedisTierVersionedKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fake := newFakeRedis()
	graph := NewGraphService(f.store.Assignments(), newFakeRedisService(fake), f.config, silentLogger())

	user := f.createUser(t, "cached@example.com")

	permissions, err := graph.ResolveEffectivePermissions(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, permissions)
	require.Len(t, fake.data, 1)

	graph.InvalidateUser(user.ID)
	_, err = graph.ResolveEffectivePermissions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, fake.data, 2)
}

// Readers hammer the resolver while a revocation commits. Any resolve that
// starts after RevokePermissionFromRole returns must see the new set.
func TestConcurrentResolveDuringRevocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "race@example.com")
	role, write := f.grantViaRole(t, user.ID, "editor", "posts:write")

	stop := make(chan struct{})
	errs := make(chan error, 4)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if _, err := f.graph.ResolveEffectivePermissions(ctx, user.ID); err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	require.NoError(t, f.lifecycle.RevokePermissionFromRole(ctx, role.ID, write.ID))

	// Happens-after the revocation returned: the grant must be gone, even
	// with fills still in flight from the reader goroutines.
	for i := 0; i < 50; i++ {
		allowed, err := f.graph.HasPermission(ctx, user.ID, "posts:write")
		require.NoError(t, err)
		require.False(t, allowed)
	}

	close(stop)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}
