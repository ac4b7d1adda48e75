package httpx

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Middleware wraps an http.Handler with extra behaviour.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h in reverse order, so the first listed
// middleware is the outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequireBearerToken gates a handler behind a static bearer token,
// compared in constant time. Used for the administrator surface; an
// empty expected token disables the endpoint entirely rather than
// leaving it open.
func RequireBearerToken(expected string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if expected == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			presented := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
			if subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
				writeBearerError(w, "invalid bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
