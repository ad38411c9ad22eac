package controllers

import (
	"net/http"

	"github.com/anafuentes/pressroute-backend/api/responses"
	"github.com/anafuentes/pressroute-backend/api/validators"
	"github.com/anafuentes/pressroute-backend/internal/settings"
	"github.com/anafuentes/pressroute-backend/pkg/logger"
)

type settingsUpdateRequest struct {
	DefaultSLADays    *int `json:"default_sla_days,omitempty" validate:"omitempty,gte=0"`
	SearchHorizonDays *int `json:"search_horizon_days,omitempty" validate:"omitempty,gte=1"`
	MinLeadDays       *int `json:"min_lead_days,omitempty" validate:"omitempty,gte=0"`
}

// SettingsGet returns the scheduling knobs, falling back to defaults.
func SettingsGet(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, current)
	}
}

// SettingsUpdate upserts the singleton settings row.
func SettingsUpdate(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body settingsUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), settings.UpdateInput{
			DefaultSLADays:    body.DefaultSLADays,
			SearchHorizonDays: body.SearchHorizonDays,
			MinLeadDays:       body.MinLeadDays,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}
