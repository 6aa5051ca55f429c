package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/loadbridge-backend/api/middleware"
	"github.com/angelmondragon/loadbridge-backend/api/validators"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/loadbridge-backend/pkg/errors"
	"github.com/angelmondragon/loadbridge-backend/pkg/pagination"
)

// requestActor bundles the authenticated identity every mutating handler needs.
type requestActor struct {
	UserID    uuid.UUID
	ProfileID uuid.UUID
	Role      enums.UserRole
}

func actorFromRequest(r *http.Request) (requestActor, error) {
	rawUserID := middleware.UserIDFromContext(r.Context())
	if rawUserID == "" {
		return requestActor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return requestActor{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}

	rawProfileID := middleware.ProfileIDFromContext(r.Context())
	if rawProfileID == "" {
		return requestActor{}, pkgerrors.New(pkgerrors.CodeForbidden, "profile context missing")
	}
	profileID, err := uuid.Parse(rawProfileID)
	if err != nil {
		return requestActor{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid profile id")
	}

	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return requestActor{}, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "unknown actor role")
	}

	return requestActor{UserID: userID, ProfileID: profileID, Role: role}, nil
}

func parseUUIDParam(r *http.Request, param, label string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, label+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return id, nil
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
