package adminauth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"clubsched/internal/lib/api/response"

	"github.com/go-chi/render"
)

// New authorizes internal admin requests with a bearer token. These arrive
// from the club's own UI, but poll/event state is still re-validated server
// side, starting with this check. An unset token is a configuration error
// and answers 5xx, never 401.
func New(log *slog.Logger, token string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(
			slog.String("component", "middleware/adminauth"),
		)

		fn := func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				log.Error("admin token is not configured")
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("admin API not configured"))
				return
			}

			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}
