package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/anafuentes/pressroute-backend/api/responses"
	"github.com/anafuentes/pressroute-backend/api/validators"
	"github.com/anafuentes/pressroute-backend/internal/events"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	"github.com/anafuentes/pressroute-backend/pkg/logger"
	"github.com/google/uuid"
)

type eventRecordRequest struct {
	Type      string          `json:"type" validate:"required"`
	SubjectID *uuid.UUID      `json:"subject_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// EventRecord accepts a client-side analytics event. Recording is best
// effort so the endpoint always answers 202.
func EventRecord(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body eventRecordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		svc.Record(r.Context(), enums.EventType(body.Type), &actor.UserID, actor.CompanyID, body.SubjectID, body.Payload)

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}
