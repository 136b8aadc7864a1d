package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"transparencia-rpa/internal/lookup"
)

// consultaRequest is the lookup request body. The CPF is accepted with
// or without standard punctuation.
type consultaRequest struct {
	CPF string `json:"cpf" validate:"required"`
}

// handleConsultar runs one synchronous CPF lookup.
func (s *Server) handleConsultar(w http.ResponseWriter, r *http.Request) {
	var req consultaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid_request")
		return
	}

	result, err := s.svc.Query(r.Context(), req.CPF)
	if err != nil {
		status, payload := errorOutcome(err)
		s.jsonResponse(w, status, payload)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// errorOutcome maps orchestrator errors to wire responses. Only the
// category (and navigation failure kind) crosses the boundary; page
// content and credentials never do.
func errorOutcome(err error) (int, map[string]string) {
	var qe *lookup.Error
	if errors.As(err, &qe) {
		switch qe.Category {
		case lookup.CategoryInvalidIdentifier:
			return http.StatusBadRequest, map[string]string{"error": string(qe.Category)}
		case lookup.CategoryLookupFailed:
			payload := map[string]string{"error": string(qe.Category)}
			if qe.Kind != "" {
				payload["category"] = qe.Kind
			}
			return http.StatusBadGateway, payload
		}
	}
	return http.StatusInternalServerError, map[string]string{"error": string(lookup.CategoryInternal)}
}
