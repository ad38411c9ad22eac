package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/anafuentes/pressroute-backend/api/responses"
	"github.com/anafuentes/pressroute-backend/api/validators"
	"github.com/anafuentes/pressroute-backend/internal/pricelists"
	"github.com/anafuentes/pressroute-backend/pkg/logger"
	"github.com/google/uuid"
)

type pricelistCreateRequest struct {
	CompanyID   uuid.UUID       `json:"company_id" validate:"required"`
	Name        string          `json:"name" validate:"required,min=1"`
	SLADays     int             `json:"sla_days" validate:"gte=0"`
	BasePrice   decimal.Decimal `json:"base_price"`
	PerBagPrice decimal.Decimal `json:"per_bag_price"`
}

type pricelistUpdateRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	SLADays     *int             `json:"sla_days,omitempty" validate:"omitempty,gte=0"`
	BasePrice   *decimal.Decimal `json:"base_price,omitempty"`
	PerBagPrice *decimal.Decimal `json:"per_bag_price,omitempty"`
	Active      *bool            `json:"active,omitempty"`
}

// PricelistCreate adds a pricelist to a company.
func PricelistCreate(svc pricelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body pricelistCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pricelist, err := svc.Create(r.Context(), pricelists.Actor(actor), pricelists.CreatePricelistDTO{
			CompanyID:   body.CompanyID,
			Name:        body.Name,
			SLADays:     body.SLADays,
			BasePrice:   body.BasePrice,
			PerBagPrice: body.PerBagPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, pricelist)
	}
}

// PricelistGet returns one pricelist.
func PricelistGet(svc pricelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(chi.URLParam(r, "pricelistID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pricelist, err := svc.Get(r.Context(), pricelists.Actor(actor), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, pricelist)
	}
}

// PricelistListByCompany returns a company's pricelists.
func PricelistListByCompany(svc pricelists.Service, logg *logger.Logger) http.HandlerFunc {
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

		list, err := svc.ListByCompany(r.Context(), pricelists.Actor(actor), companyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// PricelistUpdate adjusts pricing fields.
func PricelistUpdate(svc pricelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(chi.URLParam(r, "pricelistID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body pricelistUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pricelist, err := svc.Update(r.Context(), pricelists.Actor(actor), id, pricelists.UpdateInput{
			Name:        body.Name,
			SLADays:     body.SLADays,
			BasePrice:   body.BasePrice,
			PerBagPrice: body.PerBagPrice,
			Active:      body.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, pricelist)
	}
}

// PricelistDeactivate retires a pricelist unless routes still use it.
func PricelistDeactivate(svc pricelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parseIDParam(chi.URLParam(r, "pricelistID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), pricelists.Actor(actor), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
