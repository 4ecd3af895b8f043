package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"supplychaintree/src/domain"
)

// writeError traduz os erros de domínio para status HTTP. Erros sem mapeamento
// são logados e respondidos com a mensagem genérica de indisponibilidade.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := domain.ErrUnavailableServer.Error()

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrEdgeNotFound), errors.Is(err, domain.ErrTreeNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrDuplicateEdge),
		errors.Is(err, domain.ErrEdgeConflict),
		errors.Is(err, domain.ErrGenerationInProgress):
		status, message = http.StatusConflict, err.Error()
	default:
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	s.writeJSON(w, status, ErrorResponseDTO{Status: status, Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to write JSON response", "error", err)
	}
}

func pathNodeID(r *http.Request, name string) (int64, error) {
	value := r.PathValue(name)
	if value == "" {
		return 0, fmt.Errorf("%s is required: %w", name, domain.ErrInvalidArgument)
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %w", name, domain.ErrInvalidArgument)
	}
	return id, nil
}
