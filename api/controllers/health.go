package controllers

import (
	"context"
	"net/http"

	"github.com/anafuentes/pressroute-backend/api/responses"
	"github.com/anafuentes/pressroute-backend/pkg/config"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/anafuentes/pressroute-backend/pkg/logger"
)

// Pinger is the health surface backing dependencies expose.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PressRoute-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each named dependency and fails fast on the first one
// that does not answer.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PressRoute-Env", cfg.App.Env)

		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
