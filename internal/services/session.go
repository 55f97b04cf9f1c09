package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

const DefaultSessionTTL = 365 * 24 * time.Hour

type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionService issues and verifies the signed cookie that scopes guides
// to a browser. The session id carries no identity.
type SessionService interface {
	Issue() (sessionID string, token string, err error)
	Parse(token string) (string, error)
	TTL() time.Duration
}

type sessionService struct {
	log    *logger.Logger
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionService(log *logger.Logger, secret string, ttl time.Duration) (SessionService, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("session secret required")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &sessionService{
		log:    log.With("service", "SessionService"),
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (s *sessionService) TTL() time.Duration { return s.ttl }

func (s *sessionService) Issue() (string, string, error) {
	id := uuid.NewString()
	now := s.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign session: %w", err)
	}
	return id, token, nil
}

func (s *sessionService) Parse(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", errors.New("empty session token")
	}
	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("parse session: %w", err)
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return "", errors.New("invalid session token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("invalid session id: %w", err)
	}
	return claims.Subject, nil
}
