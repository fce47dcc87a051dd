package service

import (
	"context"

	"go-identity-core/internal/model"
	"go-identity-core/internal/repository"
	"go-identity-core/internal/utils/errcode"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// AuthService is the login facade: it verifies credentials through the
// pluggable verifier and hands issuance to the session service. Failures
// collapse to ErrInvalidCredentials regardless of whether the email or the
// password was wrong.
type AuthService struct {
	users    repository.UserRepository
	sessions *SessionService
	verifier CredentialVerifier
	log      *logrus.Logger
	tracer   trace.Tracer
}

func NewAuthService(users repository.UserRepository, sessions *SessionService, verifier CredentialVerifier, log *logrus.Logger) *AuthService {
	if verifier == nil {
		verifier = NewBcryptVerifier()
	}
	return &AuthService{users, sessions, verifier, log, otel.Tracer("AuthService")}
}

type LoginInput struct {
	Email    string
	Password string
	Meta     SessionMeta
}

func (s *AuthService) Login(ctx context.Context, input *LoginInput) (string, *model.Session, error) {
	spanCtx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	logger := s.log.WithContext(spanCtx)

	user, err := s.users.FindByEmail(spanCtx, input.Email)
	if err != nil {
		logger.WithError(err).Warn("Login failed, user not found")
		return "", nil, errcode.ErrInvalidCredentials
	}

	_, verifySpan := s.tracer.Start(spanCtx, "VerifyPassword")
	err = s.verifier.Verify(user.PasswordHash, input.Password)
	verifySpan.End()
	if err != nil {
		logger.Warn("Login failed, password mismatch")
		return "", nil, errcode.ErrInvalidCredentials
	}

	return s.sessions.Issue(spanCtx, user.ID, input.Meta)
}

// Logout revokes the presented token's session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	spanCtx, span := s.tracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	return s.sessions.Revoke(spanCtx, token)
}

// LogoutAll revokes every session of the user ("log out everywhere").
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	spanCtx, span := s.tracer.Start(ctx, "AuthService.LogoutAll")
	defer span.End()

	return s.sessions.RevokeAll(spanCtx, userID)
}
