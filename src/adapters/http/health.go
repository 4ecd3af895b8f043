package http

import (
	"net/http"
)

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if s.healthCheck != nil {
		if err := s.healthCheck(r.Context()); err != nil {
			s.logger.Warn("Health check failed", "error", err)
			s.writeJSON(w, http.StatusServiceUnavailable, HealthResponseDTO{Status: "unavailable"})
			return
		}
	}

	s.writeJSON(w, http.StatusOK, HealthResponseDTO{Status: "ok"})
}
