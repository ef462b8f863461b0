// Package token issues and verifies the HS256-signed JWTs that identify a
// bookshelf user. Tokens are stateless: there is no revocation list, and
// rotating the secret invalidates every outstanding token.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sagarc03/bookshelf"
)

const (
	// DefaultTTL is the lifetime of an issued token (30 days).
	DefaultTTL = 30 * 24 * time.Hour
	// DefaultIssuer is written to and required in the iss claim.
	DefaultIssuer = "bookshelf"
	// DefaultLeeway is the clock skew tolerated when checking exp and iat.
	DefaultLeeway = 30 * time.Second
)

// Config configures a Service.
type Config struct {
	Secret string
	TTL    time.Duration
	Issuer string
	Leeway time.Duration
}

// Service signs and verifies user tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// New creates a Service. The secret is required; zero TTL, issuer and
// leeway fall back to their defaults.
func New(cfg Config) (*Service, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("new token service: secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = DefaultIssuer
	}
	leeway := cfg.Leeway
	if leeway <= 0 {
		leeway = DefaultLeeway
	}
	return &Service{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: issuer,
		leeway: leeway,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of s that reads the current time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	c := *s
	c.now = now
	return &c
}

// TTL returns the lifetime of issued tokens.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token whose subject is userID.
func (s *Service) Issue(userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", fmt.Errorf("issue token: %w: empty user id", bookshelf.ErrInvalidInput)
	}

	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the
// subject. Every failure wraps bookshelf.ErrTokenInvalid.
func (s *Service) Verify(token string) (uuid.UUID, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return uuid.Nil, fmt.Errorf("verify token: empty: %w", bookshelf.ErrTokenInvalid)
	}

	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithLeeway(s.leeway),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("verify token: %w: %w", bookshelf.ErrTokenInvalid, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("verify token: bad subject %q: %w", claims.Subject, bookshelf.ErrTokenInvalid)
	}

	return id, nil
}
