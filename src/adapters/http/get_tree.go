package http

import (
	"encoding/json"
	"net/http"
	"supplychaintree/src/domain"
)

// GetTree escreve a árvore como um array JSON, um nó por vez. O status só é
// enviado quando o primeiro nó fica disponível; depois disso uma falha apenas
// trunca o stream e é logada.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	rootID, err := pathNodeID(r, "fromNodeId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	flusher, _ := w.(http.Flusher)
	encoder := json.NewEncoder(w)
	started := false

	err = s.treeService.ProcessTree(r.Context(), rootID, func(node domain.Node) error {
		separator := ","
		if !started {
			started = true
			separator = "["
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
		}

		if _, err := w.Write([]byte(separator)); err != nil {
			return err
		}
		if err := encoder.Encode(node); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	if !started {
		if err == nil {
			err = domain.ErrTreeNotFound
		}
		s.writeError(w, r, err)
		return
	}

	if err != nil {
		s.logger.Error("Tree stream truncated", "root_id", rootID, "error", err)
		return
	}

	if _, err := w.Write([]byte("]")); err != nil {
		s.logger.Error("Failed to finish tree stream", "root_id", rootID, "error", err)
	}
}
