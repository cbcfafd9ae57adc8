// Package auth mints and verifies the HS256 member tokens that carry a caller's user, group and roles.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/pkg/config"
)

var signingMethod = jwt.SigningMethodHS256

var (
	ErrSecretRequired    = errors.New("jwt secret is required")
	ErrMissingIdentity   = errors.New("token missing member identity")
	errIssuerRequired    = errors.New("jwt issuer is required")
	errExpiryNotPositive = errors.New("jwt expiration minutes must be positive")
)

func (p AccessTokenPayload) validate() error {
	switch {
	case p.UserID == uuid.Nil:
		return fmt.Errorf("%w: user id", ErrMissingIdentity)
	case p.GroupID == uuid.Nil:
		return fmt.Errorf("%w: group id", ErrMissingIdentity)
	case strings.TrimSpace(p.Name) == "":
		return errors.New("name is required")
	}
	for _, role := range p.Roles {
		if !role.IsValid() {
			return fmt.Errorf("invalid member role %q", role)
		}
	}
	return nil
}

func checkConfig(cfg config.JWTConfig, minting bool) error {
	if cfg.Secret == "" {
		return ErrSecretRequired
	}
	if !minting {
		return nil
	}
	if cfg.Issuer == "" {
		return errIssuerRequired
	}
	if cfg.ExpirationMinutes <= 0 {
		return errExpiryNotPositive
	}
	return nil
}

// MintAccessToken signs payload with the configured secret. The token expires ExpirationMinutes after now.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	if err := checkConfig(cfg, true); err != nil {
		return "", err
	}
	if err := payload.validate(); err != nil {
		return "", err
	}

	id := strings.TrimSpace(payload.JTI)
	if id == "" {
		id = uuid.NewString()
	}
	ttl := time.Duration(cfg.ExpirationMinutes) * time.Minute

	token := jwt.NewWithClaims(signingMethod, AccessTokenClaims{
		UserID:   payload.UserID,
		GroupID:  payload.GroupID,
		Name:     strings.TrimSpace(payload.Name),
		Callsign: strings.TrimSpace(payload.Callsign),
		Roles:    payload.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    cfg.Issuer,
			Subject:   payload.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies signature, issuer and expiry and returns the member claims.
func ParseAccessToken(cfg config.JWTConfig, raw string) (*AccessTokenClaims, error) {
	if err := checkConfig(cfg, false); err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	claims := &AccessTokenClaims{}
	if _, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}); err != nil {
		return nil, err
	}
	if claims.UserID == uuid.Nil || claims.GroupID == uuid.Nil {
		return nil, ErrMissingIdentity
	}
	return claims, nil
}
