package controllers

import (
	"net/http"

	"github.com/anafuentes/pressroute-backend/api/middleware"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/google/uuid"
)

// requestActor is the authenticated identity pulled out of the request
// context, already parsed into the types the services expect.
type requestActor struct {
	UserID    uuid.UUID
	Role      enums.UserRole
	CompanyID *uuid.UUID
}

func actorFromRequest(r *http.Request) (requestActor, error) {
	rawUser := middleware.UserIDFromContext(r.Context())
	if rawUser == "" {
		return requestActor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return requestActor{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}

	role := enums.UserRole(middleware.RoleFromContext(r.Context()))
	if !role.IsValid() {
		return requestActor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "role context missing")
	}

	actor := requestActor{UserID: userID, Role: role}
	if rawCompany := middleware.CompanyIDFromContext(r.Context()); rawCompany != "" {
		companyID, err := uuid.Parse(rawCompany)
		if err != nil {
			return requestActor{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid company id")
		}
		actor.CompanyID = &companyID
	}
	return actor, nil
}

func parseIDParam(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id")
	}
	return id, nil
}
