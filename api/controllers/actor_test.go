package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/loadbridge-backend/api/middleware"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
)

// withActor seeds the request context the way the auth middleware does.
func withActor(req *http.Request, userID, profileID uuid.UUID, role enums.UserRole) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithProfileID(ctx, profileID.String())
	ctx = middleware.WithRole(ctx, role.String())
	return req.WithContext(ctx)
}
