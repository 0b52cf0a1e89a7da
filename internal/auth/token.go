// Package auth issues and validates the bearer tokens of users and admins.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	jose "gopkg.in/go-jose/go-jose.v2"
	"gopkg.in/go-jose/go-jose.v2/jwt"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var ErrUnknownRole = errors.New("unknown role")

// Claims are the application specific claims carried next to the
// registered ones.
type Claims struct {
	Role     Role   `json:"role"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
}

func (c *Claims) Validate(context.Context) error {
	switch c.Role {
	case RoleUser, RoleAdmin:
		return nil
	}
	return ErrUnknownRole
}

type Config struct {
	Secret   string
	Issuer   string
	Audience string
}

// Issuer signs HS256 tokens.
type Issuer struct {
	cfg    Config
	signer jose.Signer
	now    func() time.Time
}

func NewIssuer(cfg Config) (*Issuer, error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: []byte(cfg.Secret)},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, err
	}
	return &Issuer{cfg: cfg, signer: signer, now: time.Now}, nil
}

// Issue returns a signed token for subject valid for ttl.
func (i *Issuer) Issue(subject string, claims Claims, ttl time.Duration) (string, error) {
	now := i.now()
	registered := jwt.Claims{
		Issuer:   i.cfg.Issuer,
		Subject:  subject,
		Audience: jwt.Audience{i.cfg.Audience},
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.Signed(i.signer).Claims(registered).Claims(claims).CompactSerialize()
}

// NewValidator returns a validator accepting tokens produced by an Issuer
// with the same configuration.
func NewValidator(cfg Config) (*validator.Validator, error) {
	key := []byte(cfg.Secret)
	return validator.New(
		func(context.Context) (interface{}, error) { return key, nil },
		validator.HS256,
		cfg.Issuer,
		[]string{cfg.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims { return &Claims{} }),
		validator.WithAllowedClockSkew(30*time.Second),
	)
}
