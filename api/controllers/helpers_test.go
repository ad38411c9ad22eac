package controllers

import (
	"context"
	"net/http"

	"github.com/anafuentes/pressroute-backend/api/middleware"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func authedRequest(req *http.Request, userID uuid.UUID, role enums.UserRole, companyID *uuid.UUID) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	if companyID != nil {
		ctx = middleware.WithCompanyID(ctx, companyID.String())
	}
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	if existing := chi.RouteContext(req.Context()); existing != nil {
		rc = existing
	}
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}
