package api

import (
	"net/http"

	"smart-support-router/internal/domain/ports/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server wires the ticket routes to the ingress and reader use cases. It
// owns request decoding and error mapping; everything else lives in the core.
type Server struct {
	ingress usecase.TicketIngress
	reader  usecase.QueueReader
	log     *zerolog.Logger
}

func NewServer(ingress usecase.TicketIngress, reader usecase.QueueReader, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "api").Logger()
	return &Server{ingress: ingress, reader: reader, log: &l}
}

// Router builds the chi mux for the public API.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(TraceID)
	r.Use(RequestLog(s.log))

	r.Post("/tickets", s.handleSubmit)
	r.Get("/tickets/next", s.handleTakeNext)
	r.Get("/tickets/{id}/status", s.handleStatus)
	r.Get("/queue", s.handleQueue)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
