package http

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strconv"
	"supplychaintree/src/domain"
)

func (s *Server) requireTestAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, password, ok := r.BasicAuth()
		if !ok || s.testAuth.User == "" ||
			subtle.ConstantTimeCompare([]byte(user), []byte(s.testAuth.User)) != 1 ||
			subtle.ConstantTimeCompare([]byte(password), []byte(s.testAuth.Password)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="test"`)
			s.writeJSON(w, http.StatusUnauthorized, ErrorResponseDTO{
				Status: http.StatusUnauthorized,
				Error:  http.StatusText(http.StatusUnauthorized),
			})
			return
		}
		next(w, r)
	}
}

// GenerateTree cria uma árvore sintética para testes de carga.
// Query: size (obrigatório) e arity (opcional).
func (s *Server) GenerateTree(w http.ResponseWriter, r *http.Request) {
	rootID, err := pathNodeID(r, "fromNodeId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("size must be an integer: %w", domain.ErrInvalidArgument))
		return
	}

	var arity *int
	if arityStr := r.URL.Query().Get("arity"); arityStr != "" {
		value, err := strconv.Atoi(arityStr)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("arity must be an integer: %w", domain.ErrInvalidArgument))
			return
		}
		arity = &value
	}

	created, err := s.treeService.GenerateTree(r.Context(), domain.GenerateTreeRequest{
		RootID: rootID,
		Size:   size,
		Arity:  arity,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, GenerateTreeResponseDTO{Created: created})
}
