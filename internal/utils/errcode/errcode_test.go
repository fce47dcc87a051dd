package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNotFound, "not_found"},
		{ErrInvalidTransition, "invalid_transition"},
		{ErrPreconditionFailed, "precondition_failed"},
		{ErrConflict, "conflict"},
		{ErrInvalidToken, "invalid_token"},
		{ErrPermissionDenied, "denied"},
		{ErrInvalidCredentials, "invalid_credentials"},
		{errors.New("disk on fire"), "internal"},
		{fmt.Errorf("restore user: %w", ErrConflict), "conflict"},
		{nil, "internal"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Kind(tt.err))
	}
}
