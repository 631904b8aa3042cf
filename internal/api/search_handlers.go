package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/booktrackerapp/booktracker-server/internal/http/response"
)

// handleListSearches returns the calling owner's tracked searches,
// partitioned by effective availability.
func (s *Server) handleListSearches(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	list, err := s.trackingService.ListTracked(r.Context(), owner.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, list, s.logger)
}

// handleDeleteSearch removes one of the calling owner's tracked searches.
func (s *Server) handleDeleteSearch(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	searchID := chi.URLParam(r, "id")

	if err := s.trackingService.Delete(r.Context(), owner.ID, searchID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// overrideRequest is the admin override payload.
type overrideRequest struct {
	ManualUnavailable *bool `json:"manual_unavailable" validate:"required"`
}

// handleSetOverride sets or clears the manual unavailability override on a
// tracked search. Admin only; the flag covers catalog states the scraper
// cannot see, like a lost copy still listed in the search results.
func (s *Server) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	search, err := s.trackingService.SetOverride(r.Context(), chi.URLParam(r, "id"), *req.ManualUnavailable)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, search, s.logger)
}
