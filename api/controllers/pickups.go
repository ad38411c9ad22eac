package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anafuentes/pressroute-backend/api/responses"
	"github.com/anafuentes/pressroute-backend/api/validators"
	"github.com/anafuentes/pressroute-backend/internal/pickups"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/anafuentes/pressroute-backend/pkg/logger"
	"github.com/google/uuid"
)

type pickupCreateRequest struct {
	RouteID        uuid.UUID  `json:"route_id" validate:"required"`
	LocationID     uuid.UUID  `json:"location_id" validate:"required"`
	PickupDate     *time.Time `json:"pickup_date,omitempty"`
	DropoffDate    *time.Time `json:"dropoff_date,omitempty"`
	DropoffTouched bool       `json:"dropoff_touched"`
	Notes          *string    `json:"notes,omitempty"`
}

type pickupUpdateRequest struct {
	PickupDate     *time.Time `json:"pickup_date,omitempty"`
	DropoffDate    *time.Time `json:"dropoff_date,omitempty"`
	DropoffTouched bool       `json:"dropoff_touched"`
	Notes          *string    `json:"notes,omitempty"`
}

type pickupStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type pickupBulkStatusRequest struct {
	IDs    []uuid.UUID `json:"ids" validate:"required,min=1"`
	Status string      `json:"status" validate:"required"`
}

// PickupCreate schedules a pickup along a route. The requested dates are
// treated as suggestions; the service resolves the authoritative window.
func PickupCreate(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body pickupCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := pickups.CreatePickupDTO{
			RouteID:        body.RouteID,
			LocationID:     body.LocationID,
			DropoffTouched: body.DropoffTouched,
			Notes:          body.Notes,
		}
		if body.PickupDate != nil {
			input.PickupDate = *body.PickupDate
		}
		if body.DropoffDate != nil {
			input.DropoffDate = *body.DropoffDate
			input.DropoffTouched = true
		}

		pickup, err := svc.Create(r.Context(), pickups.Actor(actor), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, pickup)
	}
}

// PickupGet returns one pickup, subject to visibility rules.
func PickupGet(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(chi.URLParam(r, "pickupID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pickup, err := svc.Get(r.Context(), pickups.Actor(actor), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, pickup)
	}
}

// PickupList pages through pickups visible to the actor, optionally
// filtered by status.
func PickupList(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.PickupStatus
		if raw := validators.ParseQueryString(r, "status", ""); raw != "" {
			parsed, err := enums.ParsePickupStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			status = &parsed
		}

		list, err := svc.List(r.Context(), pickups.Actor(actor), status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// PickupUpdate lets the owner adjust notes and dates while still pending.
func PickupUpdate(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(chi.URLParam(r, "pickupID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body pickupUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pickup, err := svc.Update(r.Context(), pickups.Actor(actor), id, pickups.UpdateInput{
			PickupDate:     body.PickupDate,
			DropoffDate:    body.DropoffDate,
			DropoffTouched: body.DropoffTouched,
			Notes:          body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, pickup)
	}
}

// PickupUpdateStatus sets a pickup's status directly.
func PickupUpdateStatus(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(chi.URLParam(r, "pickupID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body pickupStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pickup, err := svc.UpdateStatus(r.Context(), pickups.Actor(actor), id, enums.PickupStatus(body.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, pickup)
	}
}

// PickupBulkUpdateStatus sets the status on a batch of pickups in one
// transaction.
func PickupBulkUpdateStatus(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body pickupBulkStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BulkUpdateStatus(r.Context(), pickups.Actor(actor), body.IDs, enums.PickupStatus(body.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
