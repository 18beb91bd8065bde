package controllers

import (
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// loadActor resolves the authenticated user from the request context into a
// full domain.User. On failure it writes the appropriate error response and
// returns false; callers should return immediately.
func loadActor(w http.ResponseWriter, r *http.Request, users domain.UserService) (*domain.User, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return nil, false
	}
	actor, err := users.GetByID(r.Context(), userID)
	if err != nil {
		// The token outlived the account.
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "account no longer exists")
		return nil, false
	}
	return actor, true
}
