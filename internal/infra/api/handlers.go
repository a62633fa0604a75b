package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"smart-support-router/internal/domain"
	"smart-support-router/internal/domain/ports/usecase"

	"github.com/go-chi/chi/v5"
)

// ticketCreateRequest mirrors the public submission payload. At least one
// text field must be present; ticket_id is an optional caller-chosen id.
type ticketCreateRequest struct {
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Description string `json:"description"`
	TicketID    string `json:"ticket_id"`
}

type ticketAcceptedResponse struct {
	TicketID  string `json:"ticket_id"`
	Status    string `json:"status"`
	StatusURL string `json:"status_url"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req ticketCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, err := s.ingress.Submit(r.Context(), usecase.SubmitRequest{
		Subject:     req.Subject,
		Body:        req.Body,
		Description: req.Description,
		TicketID:    req.TicketID,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, ticketAcceptedResponse{
		TicketID:  id,
		Status:    "accepted",
		StatusURL: fmt.Sprintf("/tickets/%s/status", id),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.reader.GetStatus(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleTakeNext(w http.ResponseWriter, r *http.Request) {
	rec, err := s.reader.TakeNext(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	recs, err := s.reader.ListAll(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// writeError maps the core error taxonomy onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, "At least one of subject, body, or description is required", http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrSubmissionContended):
		http.Error(w, "System busy, retry", http.StatusTooManyRequests)
	case errors.Is(err, domain.ErrStoreUnavailable):
		s.log.Error().Err(err).Msg("shared store unavailable")
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
	default:
		s.log.Error().Err(err).Msg("unhandled error")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
