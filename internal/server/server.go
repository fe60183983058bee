// Package server exposes the onboarding workflow and the invitation
// lifecycle over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/beesaferoot/tenantflow/internal/onboarding"
	"github.com/beesaferoot/tenantflow/internal/store"
)

// Server holds the handler dependencies.
type Server struct {
	orchestrator *onboarding.Orchestrator
	inviter      *onboarding.Inviter
	invitations  *store.InvitationStore
	log          zerolog.Logger
}

func New(orchestrator *onboarding.Orchestrator, inviter *onboarding.Inviter, invitations *store.InvitationStore, log zerolog.Logger) *Server {
	return &Server{
		orchestrator: orchestrator,
		inviter:      inviter,
		invitations:  invitations,
		log:          log,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/onboard", s.handleOnboard)
	mux.HandleFunc("POST /api/invitations", s.handleCreateInvitation)
	mux.HandleFunc("GET /api/invitations", s.handleListInvitations)
	mux.HandleFunc("POST /api/invitations/{id}/resend", s.handleResendInvitation)
	mux.HandleFunc("DELETE /api/invitations/{id}", s.handleDeleteInvitation)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	return s.requestLogger(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
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

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
