package middleware

import (
	"net/http"

	"github.com/angelmondragon/loadbridge-backend/api/responses"
	pkgerrors "github.com/angelmondragon/loadbridge-backend/pkg/errors"
	"github.com/angelmondragon/loadbridge-backend/pkg/logger"
)

// ProfileContext rejects requests whose token carries no role profile.
func ProfileContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ProfileIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "profile context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
