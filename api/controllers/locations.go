package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anafuentes/pressroute-backend/api/responses"
	"github.com/anafuentes/pressroute-backend/api/validators"
	"github.com/anafuentes/pressroute-backend/internal/locations"
	"github.com/anafuentes/pressroute-backend/pkg/logger"
)

type locationCreateRequest struct {
	Name      string `json:"name" validate:"required,min=1"`
	Address   string `json:"address" validate:"required,min=1"`
	City      string `json:"city" validate:"required,min=1"`
	State     string `json:"state" validate:"required,min=2"`
	Zip       string `json:"zip" validate:"required,len=5,numeric"`
	IsDefault bool   `json:"is_default"`
}

type locationUpdateRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Address   *string `json:"address,omitempty" validate:"omitempty,min=1"`
	City      *string `json:"city,omitempty" validate:"omitempty,min=1"`
	State     *string `json:"state,omitempty" validate:"omitempty,min=2"`
	Zip       *string `json:"zip,omitempty" validate:"omitempty,len=5,numeric"`
	IsDefault *bool   `json:"is_default,omitempty"`
}

// LocationCreate saves a pickup address for the caller.
func LocationCreate(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body locationCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		location, err := svc.Create(r.Context(), locations.Actor{UserID: actor.UserID, Role: actor.Role}, locations.CreateLocationDTO{
			Name:      body.Name,
			Address:   body.Address,
			City:      body.City,
			State:     body.State,
			Zip:       body.Zip,
			IsDefault: body.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, location)
	}
}

// LocationList returns the caller's saved addresses.
func LocationList(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMine(r.Context(), locations.Actor{UserID: actor.UserID, Role: actor.Role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// LocationUpdate adjusts a saved address.
func LocationUpdate(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(chi.URLParam(r, "locationID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body locationUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		location, err := svc.Update(r.Context(), locations.Actor{UserID: actor.UserID, Role: actor.Role}, id, locations.UpdateInput{
			Name:      body.Name,
			Address:   body.Address,
			City:      body.City,
			State:     body.State,
			Zip:       body.Zip,
			IsDefault: body.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, location)
	}
}

// LocationDelete removes a saved address unless pickups still reference it.
func LocationDelete(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(chi.URLParam(r, "locationID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), locations.Actor{UserID: actor.UserID, Role: actor.Role}, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
