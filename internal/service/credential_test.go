package service

import (
	"testing"

	"go-identity-core/internal/utils/errcode"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptVerifier(t *testing.T) {
	v := &BcryptVerifier{Cost: bcrypt.MinCost}

	hash, err := v.Hash("password123")
	require.NoError(t, err)
	require.NotEqual(t, "password123", hash)

	require.NoError(t, v.Verify(hash, "password123"))
	require.ErrorIs(t, v.Verify(hash, "wrong"), errcode.ErrInvalidCredentials)
	require.ErrorIs(t, v.Verify("not-a-hash", "password123"), errcode.ErrInvalidCredentials)
}
