package api

import (
	"net/http"

	"github.com/printmechecks/server/internal/auth"
	"github.com/printmechecks/server/internal/domain"
	"github.com/printmechecks/server/internal/pkg/httputil"
)

// meResponse reports the caller's profile. With auth unconfigured every
// caller is anonymous and user stays null.
type meResponse struct {
	User           *domain.User `json:"user"`
	AuthConfigured bool         `json:"authConfigured"`
}

// Me upserts the caller's profile from their token claims and returns it.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFrom(r.Context())
	if identity == nil {
		httputil.OK(w, meResponse{AuthConfigured: h.authConfigured})
		return
	}

	user := &domain.User{
		Subject: identity.Subject,
		Email:   identity.Email,
	}
	if identity.Name != "" {
		user.Name = &identity.Name
	}
	if err := h.users.Upsert(r.Context(), user); err != nil {
		httputil.InternalError(w, "profile_failed", err)
		return
	}

	httputil.OK(w, meResponse{User: user, AuthConfigured: h.authConfigured})
}
