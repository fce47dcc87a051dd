package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "tess@example.com")
	f.grantViaRole(t, user.ID, "editor", "posts:write")

	token, _, err := f.sessions.Issue(ctx, user.ID, SessionMeta{})
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		permission string
		want       Decision
	}{
		{"granted permission", token, "posts:write", DecisionAllowed},
		{"missing permission", token, "posts:delete", DecisionDenied},
		{"garbage token", "not-a-token", "posts:write", DecisionInvalidToken},
		{"empty token", "", "posts:write", DecisionInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := f.authz.Authorize(ctx, tt.token, tt.permission)
			require.NoError(t, err)
			require.Equal(t, tt.want, decision)
		})
	}
}

func TestAuthorizeAfterRevocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "uma@example.com")
	role, write := f.grantViaRole(t, user.ID, "editor", "posts:write")

	token, _, err := f.sessions.Issue(ctx, user.ID, SessionMeta{})
	require.NoError(t, err)

	decision, err := f.authz.Authorize(ctx, token, "posts:write")
	require.NoError(t, err)
	require.Equal(t, DecisionAllowed, decision)

	t.Run("after permission revoked", func(t *testing.T) {
		require.NoError(t, f.lifecycle.RevokePermissionFromRole(ctx, role.ID, write.ID))
		decision, err := f.authz.Authorize(ctx, token, "posts:write")
		require.NoError(t, err)
		require.Equal(t, DecisionDenied, decision)
		require.NoError(t, f.lifecycle.GrantPermissionToRole(ctx, role.ID, write.ID))
	})

	t.Run("after role soft-deleted", func(t *testing.T) {
		require.NoError(t, f.lifecycle.SoftDeleteRole(ctx, role.ID))
		decision, err := f.authz.Authorize(ctx, token, "posts:write")
		require.NoError(t, err)
		require.Equal(t, DecisionDenied, decision)
	})

	t.Run("after session revoked", func(t *testing.T) {
		require.NoError(t, f.sessions.Revoke(ctx, token))
		decision, err := f.authz.Authorize(ctx, token, "posts:write")
		require.NoError(t, err)
		require.Equal(t, DecisionInvalidToken, decision)
	})
}

func TestAuthorizeSubject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "vic@example.com")
	f.grantViaRole(t, user.ID, "viewer", "posts:read")

	decision, err := f.authz.AuthorizeSubject(ctx, &Subject{UserID: user.ID}, "posts:read")
	require.NoError(t, err)
	require.Equal(t, DecisionAllowed, decision)

	decision, err = f.authz.AuthorizeSubject(ctx, &Subject{UserID: user.ID}, "posts:write")
	require.NoError(t, err)
	require.Equal(t, DecisionDenied, decision)
}
