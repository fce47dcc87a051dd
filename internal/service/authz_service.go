package service

import (
	"context"
	"errors"

	"go-identity-core/internal/utils/errcode"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Decision is the authorization outcome. Denied and InvalidToken are
// distinct for internal callers; external surfaces must render them
// identically to avoid token enumeration.
type Decision string

const (
	DecisionAllowed      Decision = "allowed"
	DecisionDenied       Decision = "denied"
	DecisionInvalidToken Decision = "invalid_token"
)

// AuthzService is the single entry point for "can subject S perform action
// A". It composes session validation with permission resolution and never
// mutates state beyond the session service's optional sliding renewal.
type AuthzService struct {
	sessions *SessionService
	graph    *GraphService
	log      *logrus.Logger
	tracer   trace.Tracer
}

func NewAuthzService(sessions *SessionService, graph *GraphService, log *logrus.Logger) *AuthzService {
	return &AuthzService{sessions, graph, log, otel.Tracer("AuthzService")}
}

// Authorize validates the token and checks the required permission against
// the subject's effective set. Infrastructure failures fail closed with
// DecisionDenied and a non-nil error.
func (s *AuthzService) Authorize(ctx context.Context, token, requiredPermission string) (Decision, error) {
	spanCtx, span := s.tracer.Start(ctx, "AuthzService.Authorize")
	defer span.End()

	subject, err := s.sessions.Validate(spanCtx, token)
	if err != nil {
		if errors.Is(err, errcode.ErrInvalidToken) {
			return DecisionInvalidToken, nil
		}
		return DecisionDenied, err
	}

	allowed, err := s.graph.HasPermission(spanCtx, subject.UserID, requiredPermission)
	if err != nil {
		s.log.WithContext(spanCtx).WithError(err).Error("Failed to resolve permissions")
		return DecisionDenied, err
	}
	if !allowed {
		return DecisionDenied, nil
	}
	return DecisionAllowed, nil
}

// AuthorizeSubject skips token validation for callers that already hold a
// validated subject, e.g. a middleware doing several checks per request.
func (s *AuthzService) AuthorizeSubject(ctx context.Context, subject *Subject, requiredPermission string) (Decision, error) {
	spanCtx, span := s.tracer.Start(ctx, "AuthzService.AuthorizeSubject")
	defer span.End()

	allowed, err := s.graph.HasPermission(spanCtx, subject.UserID, requiredPermission)
	if err != nil {
		return DecisionDenied, err
	}
	if !allowed {
		return DecisionDenied, nil
	}
	return DecisionAllowed, nil
}
