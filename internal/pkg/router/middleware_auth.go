package router

import (
	"net/http"
	"strings"

	"github.com/mehran-jafari/account/internal/pkg/jwt"
)

// middlewareAuthentication rejects requests without a valid bearer token.
// Routes listed in publicEndpoints (method -> route path set) pass through
// unauthenticated.
func middlewareAuthentication(verifier jwt.JWT, publicEndpoints map[string]map[string]struct{}) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if open, ok := publicEndpoints[r.Method]; ok {
				if _, skip := open[matchedRoutePath(r)]; skip {
					next.ServeHTTP(w, r)
					return
				}
			}

			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if !found || !strings.EqualFold(strings.TrimSpace(scheme), "Bearer") {
				writeJSON(w, map[string]string{"message": "Authentication required"}, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				writeJSON(w, map[string]string{"message": "Invalid or expired token"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}
