package api

import (
	"net/http"
	"time"

	"github.com/printmechecks/server/internal/pkg/httputil"
)

// HealthCheck probes the database with a trivial query. Degraded still
// answers, with a 503, so load balancers can tell the two states apart.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status":   "ok",
		"database": "up",
		"time":     time.Now().UTC().Format(time.RFC3339),
	}

	if h.db != nil {
		var one int
		if err := h.db.QueryRowContext(r.Context(), `SELECT 1`).Scan(&one); err != nil {
			status["status"] = "degraded"
			status["database"] = "down"
			httputil.JSON(w, http.StatusServiceUnavailable, status)
			return
		}
	}

	httputil.OK(w, status)
}
