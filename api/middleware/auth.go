package middleware

import (
	"net/http"
	"strings"

	"github.com/aresconnect/ares-connect-backend/api/responses"
	pkgAuth "github.com/aresconnect/ares-connect-backend/pkg/auth"
	"github.com/aresconnect/ares-connect-backend/pkg/config"
	pkgerrors "github.com/aresconnect/ares-connect-backend/pkg/errors"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
)

// accessTokenQueryParam carries the token on websocket upgrades, where browsers cannot set headers.
const accessTokenQueryParam = "access_token"

// Auth validates a bearer token and seeds the request context with the member identity.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithIdentity(r.Context(), Identity{
				UserID:   claims.UserID,
				GroupID:  claims.GroupID,
				Name:     claims.Name,
				Callsign: claims.Callsign,
				Roles:    claims.Roles,
			})

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":       claims.UserID.String(),
					"group_id":      claims.GroupID.String(),
					"admin_capable": claims.AdminCapable(),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		if isWebsocketUpgrade(r) {
			return strings.TrimSpace(r.URL.Query().Get(accessTokenQueryParam))
		}
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

func isWebsocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
