package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/loadbridge-backend/api/responses"
	"github.com/angelmondragon/loadbridge-backend/api/validators"
	"github.com/angelmondragon/loadbridge-backend/internal/deliveries"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/loadbridge-backend/pkg/errors"
	"github.com/angelmondragon/loadbridge-backend/pkg/logger"
)

type materializeDeliveryRequest struct {
	Address string  `json:"address" validate:"required,min=5,max=500"`
	Note    *string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// MaterializeDelivery turns an accepted deal into its delivery record.
func MaterializeDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealID, err := parseUUIDParam(r, "dealId", "deal id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body materializeDeliveryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.Materialize(r.Context(), deliveries.MaterializeInput{
			DealID:         dealID,
			Address:        validators.SanitizeString(body.Address, 500),
			Note:           body.Note,
			ActorUserID:    actor.UserID,
			ActorProfileID: actor.ProfileID,
			ActorRole:      actor.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, delivery)
	}
}

// GetDelivery returns one delivery after the service checks the actor can see it.
func GetDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deliveryID, err := parseUUIDParam(r, "deliveryId", "delivery id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.Get(r.Context(), deliveryID, actor.ProfileID, actor.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery)
	}
}

// ListDriverDeliveries pages through the authenticated driver's own deliveries.
func ListDriverDeliveries(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.DeliveryStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseDeliveryStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			status = &parsed
		}

		list, err := svc.ListForDriver(r.Context(), actor.ProfileID, params, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ListAvailableDeliveries shows ready, unassigned deliveries matching the driver's coverage.
func ListAvailableDeliveries(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		open, err := svc.ListAvailable(r.Context(), actor.ProfileID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deliveries": open})
	}
}

// AcceptDelivery claims an open delivery for the authenticated driver.
func AcceptDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return deliveryTransition(svc, logg, func(r *http.Request, svc deliveries.Service, input deliveries.TransitInput) (any, error) {
		return svc.Claim(r.Context(), deliveries.ClaimInput{
			DeliveryID:     input.DeliveryID,
			ActorUserID:    input.ActorUserID,
			ActorProfileID: input.ActorProfileID,
			ActorRole:      input.ActorRole,
		})
	})
}

// StartDelivery moves a scheduled delivery into transit.
func StartDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return deliveryTransition(svc, logg, func(r *http.Request, svc deliveries.Service, input deliveries.TransitInput) (any, error) {
		return svc.Start(r.Context(), input)
	})
}

// CompleteDelivery marks an in-transit delivery as delivered and closes the deal.
func CompleteDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return deliveryTransition(svc, logg, func(r *http.Request, svc deliveries.Service, input deliveries.TransitInput) (any, error) {
		return svc.Complete(r.Context(), input)
	})
}

func deliveryTransition(svc deliveries.Service, logg *logger.Logger, apply func(*http.Request, deliveries.Service, deliveries.TransitInput) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deliveryID, err := parseUUIDParam(r, "deliveryId", "delivery id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := apply(r, svc, deliveries.TransitInput{
			DeliveryID:     deliveryID,
			ActorUserID:    actor.UserID,
			ActorProfileID: actor.ProfileID,
			ActorRole:      actor.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
