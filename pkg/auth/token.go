package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// RoleAdmin is the only role the gateway issues.
const RoleAdmin = "admin"

// Claims is what a verified token carries.
type Claims struct {
	Role      string
	ID        string
	ExpiresAt time.Time
}

// Issuer signs and verifies HS256 bearer tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an issuer. ttl <= 0 means seven days.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed admin token.
func (i *Issuer) Issue() (string, error) {
	if len(i.secret) == 0 {
		return "", ErrNotConfigured
	}
	jti, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}

	now := i.now()
	claims := jwt.MapClaims{
		"role": RoleAdmin,
		"jti":  jti,
		"iat":  now.Unix(),
		"exp":  now.Add(i.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and checks signature, algorithm and expiry.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	if len(i.secret) == 0 {
		return nil, ErrNotConfigured
	}
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired", ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	out := &Claims{}
	out.Role, _ = claims["role"].(string)
	out.ID, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
