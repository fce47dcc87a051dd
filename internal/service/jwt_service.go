package service

import (
	"context"
	"time"

	"go-identity-core/internal/config/env"
	"go-identity-core/internal/utils/errcode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// SessionClaims binds a token to its session record: Subject carries the
// user ID, ID (jti) carries the session ID.
type SessionClaims struct {
	jwt.RegisteredClaims
}

type JwtService struct {
	log    *logrus.Logger
	config *env.Config
	tracer trace.Tracer
}

func NewJwtService(log *logrus.Logger, config *env.Config) *JwtService {
	return &JwtService{log, config, otel.Tracer("JwtService")}
}

// Sign creates the session token for the given user and session record.
func (j *JwtService) Sign(ctx context.Context, userID, sessionID string, issuedAt, expiresAt time.Time) (string, error) {
	_, span := j.tracer.Start(ctx, "JwtService.Sign")
	defer span.End()

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.Token.Secret))
}

// Parse verifies the signature and claim shape only. Lifetime is judged
// against the session row, not the embedded exp: sliding renewal can extend
// a session past the expiry stamped into the token at issue time, so the
// claim is informational. Every failure collapses to ErrInvalidToken so
// callers cannot distinguish malformed from forged tokens.
func (j *JwtService) Parse(ctx context.Context, tokenString string) (*SessionClaims, error) {
	spanCtx, span := j.tracer.Start(ctx, "JwtService.Parse")
	defer span.End()

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errcode.ErrInvalidToken
		}
		return []byte(j.config.Token.Secret), nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		j.log.WithContext(spanCtx).WithError(err).Debug("Failed to parse session token")
		return nil, errcode.ErrInvalidToken
	}
	if !token.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, errcode.ErrInvalidToken
	}

	return claims, nil
}
