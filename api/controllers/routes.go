package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anafuentes/pressroute-backend/api/responses"
	"github.com/anafuentes/pressroute-backend/api/validators"
	"github.com/anafuentes/pressroute-backend/internal/routes"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/anafuentes/pressroute-backend/pkg/logger"
	"github.com/google/uuid"
)

const dateParamLayout = "2006-01-02"

type routeCreateRequest struct {
	CompanyID   uuid.UUID  `json:"company_id" validate:"required"`
	Name        string     `json:"name" validate:"required,min=1"`
	ZipCodes    []string   `json:"zip_codes" validate:"required,min=1"`
	Weekdays    []int      `json:"weekdays" validate:"required,min=1"`
	StartTime   string     `json:"start_time" validate:"required"`
	EndTime     string     `json:"end_time" validate:"required"`
	PricelistID *uuid.UUID `json:"pricelist_id,omitempty"`
}

type routeUpdateRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1"`
	ZipCodes    *[]string  `json:"zip_codes,omitempty" validate:"omitempty,min=1"`
	Weekdays    *[]int     `json:"weekdays,omitempty" validate:"omitempty,min=1"`
	StartTime   *string    `json:"start_time,omitempty"`
	EndTime     *string    `json:"end_time,omitempty"`
	PricelistID *uuid.UUID `json:"pricelist_id,omitempty"`
	Active      *bool      `json:"active,omitempty"`
}

// RouteCreate registers a delivery route for a company.
func RouteCreate(svc routes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body routeCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		route, err := svc.Create(r.Context(), routes.Actor(actor), routes.CreateRouteDTO{
			CompanyID:   body.CompanyID,
			Name:        body.Name,
			ZipCodes:    body.ZipCodes,
			Weekdays:    body.Weekdays,
			StartTime:   body.StartTime,
			EndTime:     body.EndTime,
			PricelistID: body.PricelistID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, route)
	}
}

// RouteGet returns one route.
func RouteGet(svc routes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(chi.URLParam(r, "routeID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		route, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, route)
	}
}

// RouteListByCompany returns a company's routes.
func RouteListByCompany(svc routes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		companyID, err := parseIDParam(chi.URLParam(r, "companyID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByCompany(r.Context(), routes.Actor(actor), companyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// RouteLookupByZip returns the active routes serving a ZIP. Public.
func RouteLookupByZip(svc routes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.LookupByZip(r.Context(), chi.URLParam(r, "zip"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// RouteUpdate adjusts route fields.
func RouteUpdate(svc routes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(chi.URLParam(r, "routeID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body routeUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		route, err := svc.Update(r.Context(), routes.Actor(actor), id, routes.UpdateInput{
			Name:        body.Name,
			ZipCodes:    body.ZipCodes,
			Weekdays:    body.Weekdays,
			StartTime:   body.StartTime,
			EndTime:     body.EndTime,
			PricelistID: body.PricelistID,
			Active:      body.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, route)
	}
}

// RouteDeactivate retires a route unless open pickups still ride on it.
func RouteDeactivate(svc routes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(chi.URLParam(r, "routeID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), routes.Actor(actor), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

// RouteWindow suggests the next valid pickup/dropoff pair for a route.
// Query dates use YYYY-MM-DD; omitted dates mean "earliest possible".
func RouteWindow(svc routes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(chi.URLParam(r, "routeID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input routes.WindowInput
		if raw := validators.ParseQueryString(r, "pickup_date", ""); raw != "" {
			parsed, err := time.Parse(dateParamLayout, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pickup_date"))
				return
			}
			input.PickupDate = parsed
		}
		if raw := validators.ParseQueryString(r, "dropoff_date", ""); raw != "" {
			parsed, err := time.Parse(dateParamLayout, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dropoff_date"))
				return
			}
			input.DropoffDate = parsed
			input.DropoffTouched = true
		}

		window, err := svc.Window(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, window)
	}
}
