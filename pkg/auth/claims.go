package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/pkg/enums"
)

// AccessTokenPayload is the member identity minted into a JWT by the identity provider.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	GroupID  uuid.UUID
	Name     string
	Callsign string
	Roles    []enums.MemberRole
	JTI      string
}

// AccessTokenClaims represents the typed JWT presented by clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID          `json:"user_id"`
	GroupID  uuid.UUID          `json:"group_id"`
	Name     string             `json:"name"`
	Callsign string             `json:"callsign,omitempty"`
	Roles    []enums.MemberRole `json:"roles"`
	jwt.RegisteredClaims
}

// AdminCapable reports whether the token holder may manage alerts.
func (c *AccessTokenClaims) AdminCapable() bool {
	if c == nil {
		return false
	}
	return enums.IsAdminCapable(c.Roles)
}
