package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/aresconnect/ares-connect-backend/pkg/enums"
)

type contextKey string

const ctxIdentity contextKey = "member_identity"

// Identity is the member snapshot taken from the bearer token.
type Identity struct {
	UserID   uuid.UUID
	GroupID  uuid.UUID
	Name     string
	Callsign string
	Roles    []enums.MemberRole
}

// AdminCapable reports whether the member may create, edit or delete alerts.
func (i Identity) AdminCapable() bool {
	return enums.IsAdminCapable(i.Roles)
}

// WithIdentity injects the member identity into the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(ctxIdentity).(Identity)
	return identity, ok
}

func UserIDFromContext(ctx context.Context) string {
	identity, ok := IdentityFromContext(ctx)
	if !ok || identity.UserID == uuid.Nil {
		return ""
	}
	return identity.UserID.String()
}

func GroupIDFromContext(ctx context.Context) string {
	identity, ok := IdentityFromContext(ctx)
	if !ok || identity.GroupID == uuid.Nil {
		return ""
	}
	return identity.GroupID.String()
}
