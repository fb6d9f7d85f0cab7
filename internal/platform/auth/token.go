package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the single outcome for every verification failure:
// expired, malformed, or wrongly signed tokens are indistinguishable to the
// caller so that the guard never leaks which check failed.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed payload of an issued token.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// TokenService issues and verifies HS256-signed bearer tokens carrying an
// Identity. Tokens are stateless: validity is determined entirely by the
// signature and the expiry claim, and an issued token cannot be revoked
// before it expires.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// DefaultTokenTTL is used when NewTokenService is given a non-positive ttl.
const DefaultTokenTTL = 7 * 24 * time.Hour

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a token for ident with iat = now and exp = now + ttl.
func (s *TokenService) Issue(ident Identity) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: ident.Email,
		Role:  ident.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token. Every failure mode collapses to
// ErrInvalidToken.
func (s *TokenService) Verify(tokenStr string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	return Identity{ID: id, Email: claims.Email, Role: claims.Role}, nil
}

// Refresh re-verifies tokenStr and issues a fresh token with a new expiry
// from the verified claims. An expired token cannot be refreshed: the new
// token is only as trustworthy as the one presented.
func (s *TokenService) Refresh(tokenStr string) (string, error) {
	ident, err := s.Verify(tokenStr)
	if err != nil {
		return "", err
	}
	return s.Issue(ident)
}
