// Package jwttoken issues and validates signer tokens.
//
// A signer token is an EdDSA JWT whose subject is the base58 ed25519 public
// key that produced the signature. Presenting a valid token proves control of
// that identity, which is how callers populate the signer set of an operation.
package jwttoken

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"realmgov/pkg/domain"
	dErrors "realmgov/pkg/domain-errors"
	authmw "realmgov/pkg/platform/middleware/auth"
)

// Claims are the registered claims of a signer token plus the request it is
// bound to: htm and htu name the method and path, bh the body SHA-256.
type Claims struct {
	jwt.RegisteredClaims
	Method   string `json:"htm"`
	Path     string `json:"htu"`
	BodyHash string `json:"bh"`
}

// Binding returns the request the token was issued for.
func (c *Claims) Binding() authmw.Binding {
	return authmw.Binding{Method: c.Method, Path: c.Path, BodyHash: c.BodyHash}
}

// SignerTokenService validates signer tokens for one program audience.
type SignerTokenService struct {
	audience string
	maxAge   time.Duration
	leeway   time.Duration
	now      func() time.Time
}

// Option configures a SignerTokenService.
type Option func(*SignerTokenService)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *SignerTokenService) { s.now = now }
}

// WithLeeway tolerates clock skew between signer and server.
func WithLeeway(d time.Duration) Option {
	return func(s *SignerTokenService) { s.leeway = d }
}

func NewSignerTokenService(audience string, maxAge time.Duration, opts ...Option) *SignerTokenService {
	s := &SignerTokenService{
		audience: audience,
		maxAge:   maxAge,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueSignerToken signs a token for the identity behind key, valid only for
// the request described by binding. Used by clients, the CLI and tests.
func IssueSignerToken(key ed25519.PrivateKey, audience string, binding authmw.Binding, expiresIn time.Duration, now time.Time) (string, error) {
	pub, ok := key.Public().(ed25519.PublicKey)
	if !ok {
		return "", errors.New("unexpected public key type")
	}
	var id domain.Identity
	copy(id[:], pub)

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			Audience:  []string{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			ID:        uuid.NewString(),
		},
		Method:   binding.Method,
		Path:     binding.Path,
		BodyHash: binding.BodyHash,
	})
	return token.SignedString(key)
}

// ValidateToken checks the signature against the subject's own key, the
// audience, and the lifetime bound. It does not check replay.
func (s *SignerTokenService) ValidateToken(tokenString string) (domain.Identity, *Claims, error) {
	var signer domain.Identity
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		claims, ok := token.Claims.(*Claims)
		if !ok {
			return nil, jwt.ErrTokenInvalidClaims
		}
		id, err := domain.ParseIdentity(claims.Subject)
		if err != nil {
			return nil, jwt.ErrTokenInvalidSubject
		}
		signer = id
		return ed25519.PublicKey(id[:]), nil
	},
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(s.leeway),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, nil, dErrors.New(dErrors.CodeUnauthenticated, "signer token has expired")
		}
		return domain.Identity{}, nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid signer token")
	}
	if !parsed.Valid {
		return domain.Identity{}, nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid signer token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return domain.Identity{}, nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid signer token claims")
	}
	if claims.ID == "" {
		return domain.Identity{}, nil, dErrors.New(dErrors.CodeUnauthenticated, "signer token requires jti")
	}
	if claims.IssuedAt == nil || claims.ExpiresAt.Sub(claims.IssuedAt.Time) > s.maxAge {
		return domain.Identity{}, nil, dErrors.New(dErrors.CodeUnauthenticated, "signer token lifetime too long")
	}
	if claims.Method == "" || claims.Path == "" || claims.BodyHash == "" {
		return domain.Identity{}, nil, dErrors.New(dErrors.CodeUnauthenticated, "signer token is not bound to a request")
	}
	return signer, claims, nil
}
