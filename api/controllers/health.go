package controllers

import (
	"context"
	"net/http"

	"github.com/velocimech/velocimech-backend/api/responses"
	"github.com/velocimech/velocimech-backend/pkg/config"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
	"github.com/velocimech/velocimech-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-VelociMech-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the stateful dependencies answer.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbPing, redisPing pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-VelociMech-Env", cfg.App.Env)

		checks := map[string]pinger{
			"postgres": dbPing,
			"redis":    redisPing,
		}
		for name, dep := range checks {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable")
				responses.WriteError(r.Context(), logg, w, wrapped)
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
