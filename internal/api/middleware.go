package api

import (
	"context"
	"net/http"

	"github.com/booktrackerapp/booktracker-server/internal/domain"
	"github.com/booktrackerapp/booktracker-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyOwner contextKey = "owner"

// ownerHeader identifies the calling owner. Authentication itself lives at
// the deployment's edge proxy; this service trusts the header it injects.
const ownerHeader = "X-Owner-ID"

// requireOwner resolves the calling owner from the identity header and
// attaches the user record to the request context.
func (s *Server) requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.Header.Get(ownerHeader)
		if ownerID == "" {
			response.Unauthorized(w, "Missing owner identity", s.logger)
			return
		}

		owner, err := s.trackingService.GetUser(r.Context(), ownerID)
		if err != nil {
			response.Unauthorized(w, "Unknown owner identity", s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyOwner, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin ensures the resolved owner is an administrator.
// Must be used after requireOwner.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := ownerFrom(r.Context())
		if owner == nil || !owner.IsAdmin() {
			response.Forbidden(w, "Administrator access required", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ownerFrom extracts the resolved owner from request context.
// Returns nil outside requireOwner.
func ownerFrom(ctx context.Context) *domain.User {
	if owner, ok := ctx.Value(contextKeyOwner).(*domain.User); ok {
		return owner
	}
	return nil
}
