package auth

import (
	"crypto/subtle"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/slotdesk/slotdesk/internal/rest"
)

const tokenHeader = "X-Admin-Token"

// TokenValidator guards the superadmin API with a shared token. Identity and
// session management live in front of this service; this is the last line
// check that a request came through the admin proxy.
type TokenValidator struct {
	Token string
}

func (v TokenValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v.Token == "" {
			log.Warn("admin token is not configured, rejecting superadmin request")
			rest.Error(w, http.StatusServiceUnavailable, "Admin API is not configured", "")
			return
		}
		presented := r.Header.Get(tokenHeader)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(v.Token)) != 1 {
			rest.Error(w, http.StatusUnauthorized, "Invalid admin token", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
