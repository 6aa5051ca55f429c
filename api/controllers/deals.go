package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/loadbridge-backend/api/responses"
	"github.com/angelmondragon/loadbridge-backend/api/validators"
	dealsvc "github.com/angelmondragon/loadbridge-backend/internal/deals"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/loadbridge-backend/pkg/errors"
	"github.com/angelmondragon/loadbridge-backend/pkg/logger"
)

type createDealItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type createDealRequest struct {
	SupplierID        string                  `json:"supplier_id" validate:"required,uuid"`
	DeliveryHandling  string                  `json:"delivery_handling" validate:"required"`
	DeliveryCostSplit *int                    `json:"delivery_cost_split,omitempty" validate:"omitempty,min=0,max=100"`
	Items             []createDealItemRequest `json:"items" validate:"required,min=1,dive"`
}

type respondDealRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accept reject"`
}

type cancelDealRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// CreateDeal opens a deal between the authenticated seller and a supplier.
func CreateDeal(svc dealsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createDealRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplierID, err := uuid.Parse(strings.TrimSpace(body.SupplierID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id"))
			return
		}

		handling, err := enums.ParseDeliveryHandling(strings.TrimSpace(body.DeliveryHandling))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery handling"))
			return
		}

		items := make([]dealsvc.DealItemInput, 0, len(body.Items))
		for _, item := range body.Items {
			productID, err := uuid.Parse(strings.TrimSpace(item.ProductID))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
				return
			}
			items = append(items, dealsvc.DealItemInput{ProductID: productID, Quantity: item.Quantity})
		}

		deal, err := svc.Create(r.Context(), dealsvc.CreateDealInput{
			SupplierID:        supplierID,
			DeliveryHandling:  handling,
			DeliveryCostSplit: body.DeliveryCostSplit,
			Items:             items,
			ActorUserID:       actor.UserID,
			ActorProfileID:    actor.ProfileID,
			ActorRole:         actor.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, deal)
	}
}

// ListDeals pages through the deals visible to the authenticated profile.
func ListDeals(svc dealsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
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

		filters, err := buildDealFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), actor.ProfileID, actor.Role, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetDeal returns a single deal after the service checks party membership.
func GetDeal(svc dealsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
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

		deal, err := svc.Get(r.Context(), dealID, actor.ProfileID, actor.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deal)
	}
}

// RespondToDeal records the supplier's accept or reject decision.
func RespondToDeal(svc dealsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
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

		var body respondDealRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.Respond(r.Context(), dealsvc.RespondInput{
			DealID:         dealID,
			Decision:       dealsvc.DealDecision(strings.ToLower(strings.TrimSpace(body.Decision))),
			ActorUserID:    actor.UserID,
			ActorProfileID: actor.ProfileID,
			ActorRole:      actor.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deal)
	}
}

// CancelDeal lets the seller withdraw a deal before a driver is assigned.
func CancelDeal(svc dealsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal service unavailable"))
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

		var body cancelDealRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.Cancel(r.Context(), dealsvc.CancelInput{
			DealID:         dealID,
			Reason:         validators.SanitizeString(body.Reason, 500),
			ActorUserID:    actor.UserID,
			ActorProfileID: actor.ProfileID,
			ActorRole:      actor.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deal)
	}
}

func buildDealFilters(r *http.Request) (dealsvc.DealFilters, error) {
	var filters dealsvc.DealFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseDealStatus(raw)
		if err != nil {
			return dealsvc.DealFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("delivery_handling")); raw != "" {
		handling, err := enums.ParseDeliveryHandling(raw)
		if err != nil {
			return dealsvc.DealFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery handling filter")
		}
		filters.DeliveryHandling = &handling
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("date_from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return dealsvc.DealFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date_from")
		}
		filters.DateFrom = &from
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("date_to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return dealsvc.DealFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date_to")
		}
		filters.DateTo = &to
	}

	return filters, nil
}
