package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"go-identity-core/internal/config/env"
	"go-identity-core/internal/model"
	"go-identity-core/internal/repository"
	"go-identity-core/internal/utils/errcode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Subject is the authenticated identity a validated token yields.
type Subject struct {
	UserID    string
	SessionID string
}

// SessionMeta carries the optional client attributes recorded on issue.
type SessionMeta struct {
	IPAddress string
	UserAgent string
}

// SessionService issues, validates and revokes session tokens. Validation
// is side-effect-free unless sliding renewal is enabled in config; renewal
// extends expiry but never clears a revocation.
type SessionService struct {
	users       repository.UserRepository
	sessions    repository.SessionRepository
	jwtService  *JwtService
	revocations *RevocationCache
	config      *env.Config
	log         *logrus.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

func NewSessionService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	jwtService *JwtService,
	revocations *RevocationCache,
	config *env.Config,
	log *logrus.Logger,
) *SessionService {
	return &SessionService{
		users:       users,
		sessions:    sessions,
		jwtService:  jwtService,
		revocations: revocations,
		config:      config,
		log:         log,
		tracer:      otel.Tracer("SessionService"),
		now:         time.Now,
	}
}

// Issue creates a session for an active user and returns the signed token.
func (s *SessionService) Issue(ctx context.Context, userID string, meta SessionMeta) (string, *model.Session, error) {
	spanCtx, span := s.tracer.Start(ctx, "SessionService.Issue")
	defer span.End()

	logger := s.log.WithContext(spanCtx)

	if _, err := s.users.FindByID(spanCtx, userID); err != nil {
		logger.WithError(err).Warn("Session issue refused, user not active")
		return "", nil, errcode.ErrNotFound
	}

	now := s.now()
	session := &model.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.config.GetTokenTTL()),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}

	token, err := s.jwtService.Sign(spanCtx, userID, session.ID, session.IssuedAt, session.ExpiresAt)
	if err != nil {
		logger.WithError(err).Error("Failed to sign session token")
		return "", nil, err
	}
	session.TokenHash = hashToken(token)

	if err := s.sessions.Create(spanCtx, session); err != nil {
		logger.WithError(err).Error("Failed to persist session")
		return "", nil, err
	}

	return token, session, nil
}

// Validate checks the presented token and returns its subject. Revoked,
// expired, unknown and malformed tokens all fail with ErrInvalidToken.
// Expiry is the session row's ExpiresAt, which sliding renewal may have
// pushed past the exp stamped into the token.
func (s *SessionService) Validate(ctx context.Context, token string) (*Subject, error) {
	spanCtx, span := s.tracer.Start(ctx, "SessionService.Validate")
	defer span.End()

	claims, err := s.jwtService.Parse(spanCtx, token)
	if err != nil {
		return nil, errcode.ErrInvalidToken
	}

	if s.revocations.Revoked(spanCtx, claims.ID) {
		return nil, errcode.ErrInvalidToken
	}

	session, err := s.sessions.FindByID(spanCtx, claims.ID)
	if err != nil {
		return nil, errcode.ErrInvalidToken
	}

	now := s.now()
	if !session.Live(now) || session.TokenHash != hashToken(token) {
		return nil, errcode.ErrInvalidToken
	}

	if s.config.Token.SlidingRenewal {
		session.ExpiresAt = now.Add(s.config.GetTokenTTL())
		if err := s.sessions.Save(spanCtx, session); err != nil {
			// Renewal is best-effort; the validation outcome stands.
			s.log.WithContext(spanCtx).WithError(err).Warn("Failed to renew session expiry")
		}
	}

	return &Subject{UserID: session.UserID, SessionID: session.ID}, nil
}

// Revoke invalidates the session behind the presented token. Revoking an
// already-revoked session is a no-op.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	spanCtx, span := s.tracer.Start(ctx, "SessionService.Revoke")
	defer span.End()

	claims, err := s.jwtService.Parse(spanCtx, token)
	if err != nil {
		return errcode.ErrInvalidToken
	}
	return s.RevokeSession(spanCtx, claims.ID)
}

// RevokeSession invalidates a session by ID, for "log out this device"
// style session management.
func (s *SessionService) RevokeSession(ctx context.Context, sessionID string) error {
	spanCtx, span := s.tracer.Start(ctx, "SessionService.RevokeSession")
	defer span.End()

	session, err := s.sessions.FindByID(spanCtx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errcode.ErrNotFound
		}
		return err
	}

	if err := s.sessions.Revoke(spanCtx, sessionID, s.now()); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	s.revocations.Add(spanCtx, sessionID, session.ExpiresAt)
	return nil
}

// RevokeAll invalidates every live session of the user. Used by the
// hard-delete cascade and by "log out everywhere".
func (s *SessionService) RevokeAll(ctx context.Context, userID string) error {
	spanCtx, span := s.tracer.Start(ctx, "SessionService.RevokeAll")
	defer span.End()

	revoked, err := s.sessions.RevokeAllForUser(spanCtx, userID, s.now())
	if err != nil {
		return err
	}
	s.CacheRevocations(spanCtx, revoked)
	return nil
}

// CacheRevocations pushes already-revoked sessions into the fast-path
// cache. The lifecycle cascades revoke rows inside their transaction and
// call this after commit.
func (s *SessionService) CacheRevocations(ctx context.Context, sessions []*model.Session) {
	for _, session := range sessions {
		s.revocations.Add(ctx, session.ID, session.ExpiresAt)
	}
}

// ListSessions returns the user's sessions, live and dead, newest last.
func (s *SessionService) ListSessions(ctx context.Context, userID string) ([]*model.Session, error) {
	spanCtx, span := s.tracer.Start(ctx, "SessionService.ListSessions")
	defer span.End()

	return s.sessions.ListForUser(spanCtx, userID)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
