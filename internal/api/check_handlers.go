package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/booktrackerapp/booktracker-server/internal/http/response"
)

// checkRequest is the interactive check payload.
type checkRequest struct {
	ISBN string `json:"isbn" validate:"required,trackable_isbn"`
}

// handleCheck runs an interactive availability check for the calling owner
// and returns the reconciled tracked search.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	owner := ownerFrom(r.Context())
	result, err := s.checkService.Check(r.Context(), owner.ID, req.ISBN)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}
