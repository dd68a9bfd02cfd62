package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/olehvasyliv/cooking-corner/internal/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

// requestLogging logs every request with its duration and status.
func (a *api) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		a.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// authenticate validates the Bearer token and stores its claims on the
// request context.
func (a *api) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			a.respondError(w, http.StatusUnauthorized, "no token provided")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			a.respondError(w, http.StatusUnauthorized, "invalid token format")
			return
		}

		claims, err := a.jwt.VerifyToken(token)
		if err != nil {
			a.respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates a route on the isAdmin claim. Must run after
// authenticate.
func (a *api) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r)
		if claims == nil || !claims.IsAdmin {
			a.respondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}

// callerID returns the authenticated user's ObjectID. The second result
// is false when the route is unauthenticated or the claim is malformed.
func callerID(r *http.Request) (bson.ObjectID, bool) {
	claims := claimsFrom(r)
	if claims == nil {
		return bson.ObjectID{}, false
	}
	id, err := bson.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return bson.ObjectID{}, false
	}
	return id, true
}
