package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loadbridge-backend/api/responses"
	"github.com/angelmondragon/loadbridge-backend/api/validators"
	"github.com/angelmondragon/loadbridge-backend/internal/dispatch"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/loadbridge-backend/pkg/errors"
	"github.com/angelmondragon/loadbridge-backend/pkg/logger"
)

type requestDriverRequest struct {
	DriverID       string `json:"driver_id" validate:"required,uuid"`
	RequestedPrice string `json:"requested_price" validate:"required"`
}

type driverRespondRequest struct {
	Decision      string  `json:"decision" validate:"required,oneof=accept reject"`
	ProposedPrice *string `json:"proposed_price,omitempty"`
}

// RequestDriver lets a deal party offer the haul to a specific driver.
func RequestDriver(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
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

		var body requestDriverRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		driverID, err := uuid.Parse(strings.TrimSpace(body.DriverID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid driver id"))
			return
		}

		price, err := parsePrice(body.RequestedPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.RequestDriver(r.Context(), dispatch.RequestDriverInput{
			DealID:         dealID,
			DriverID:       driverID,
			RequestedPrice: price,
			ActorUserID:    actor.UserID,
			ActorProfileID: actor.ProfileID,
			ActorRole:      actor.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// ListDealDriverRequests shows a deal's outstanding and settled driver offers to its parties.
func ListDealDriverRequests(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
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

		requests, err := svc.ListDealRequests(r.Context(), dealID, actor.ProfileID, actor.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"requests": requests})
	}
}

// DriverRequestInbox pages through the delivery offers addressed to the authenticated driver.
func DriverRequestInbox(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
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

		var status *enums.DriverRequestStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseDriverRequestStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			status = &parsed
		}

		list, err := svc.ListInbox(r.Context(), actor.ProfileID, params, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// DriverRespondToRequest records the driver's answer to a delivery offer.
func DriverRespondToRequest(svc dispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := parseUUIDParam(r, "requestId", "request id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body driverRespondRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var proposed *decimal.Decimal
		if body.ProposedPrice != nil && strings.TrimSpace(*body.ProposedPrice) != "" {
			price, err := parsePrice(*body.ProposedPrice)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			proposed = &price
		}

		request, err := svc.Respond(r.Context(), dispatch.RespondInput{
			RequestID:      requestID,
			Decision:       dispatch.RequestDecision(strings.ToLower(strings.TrimSpace(body.Decision))),
			ProposedPrice:  proposed,
			ActorUserID:    actor.UserID,
			ActorProfileID: actor.ProfileID,
			ActorRole:      actor.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	if price.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return price, nil
}
