package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/aresconnect/ares-connect-backend/api/responses"
	"github.com/aresconnect/ares-connect-backend/pkg/config"
	"github.com/aresconnect/ares-connect-backend/pkg/db"
	pkgerrors "github.com/aresconnect/ares-connect-backend/pkg/errors"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
	"github.com/aresconnect/ares-connect-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ares-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each configured dependency. Nil pingers are reported as disabled.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ares-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		var failed error
		check := func(name string, ping func(context.Context) error) {
			if ping == nil {
				checks[name] = "disabled"
				return
			}
			if err := ping(ctx); err != nil {
				checks[name] = "error"
				if failed == nil {
					failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable")
				}
				return
			}
			checks[name] = "ok"
		}

		var dbPing, redisPing func(context.Context) error
		if dbP != nil {
			dbPing = dbP.Ping
		}
		if redisP != nil {
			redisPing = redisP.Ping
		}
		check("database", dbPing)
		check("redis", redisPing)

		if failed != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.As(failed).WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
