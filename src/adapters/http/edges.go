package http

import (
	"net/http"
)

func (s *Server) CreateEdge(w http.ResponseWriter, r *http.Request) {
	fromNodeID, err := pathNodeID(r, "fromNodeId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	toNodeID, err := pathNodeID(r, "toNodeId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.treeService.CreateEdge(r.Context(), fromNodeID, toNodeID); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	fromNodeID, err := pathNodeID(r, "fromNodeId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	toNodeID, err := pathNodeID(r, "toNodeId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.treeService.DeleteEdge(r.Context(), fromNodeID, toNodeID); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
