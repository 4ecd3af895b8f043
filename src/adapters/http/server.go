package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"supplychaintree/src/services/supplychain"

	"time"
)

// BasicAuth protege as rotas /test; credenciais vazias desabilitam essas rotas.
type BasicAuth struct {
	User     string
	Password string
}

// Server representa o servidor HTTP da API
type Server struct {
	logger      *slog.Logger
	server      *http.Server
	mux         *http.ServeMux
	port        int
	treeService *supplychain.TreeService
	testAuth    BasicAuth
	healthCheck func(ctx context.Context) error
}

// NewServer cria uma nova instância do servidor
func NewServer(
	logger *slog.Logger,
	port int,
	treeService *supplychain.TreeService,
	testAuth BasicAuth,
) *Server {
	server := &Server{
		mux:         http.NewServeMux(),
		port:        port,
		logger:      logger,
		treeService: treeService,
		testAuth:    testAuth,
	}

	// Sem WriteTimeout: a resposta da árvore é um stream que pode durar mais que qualquer limite fixo.
	server.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     server.mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	// Rotas de Leitura
	server.mux.HandleFunc("GET /api/tree/from/{fromNodeId}", server.GetTree)

	// Rotas de Escritas
	server.mux.HandleFunc("POST /api/edge/from/{fromNodeId}/to/{toNodeId}", server.CreateEdge)
	server.mux.HandleFunc("DELETE /api/edge/from/{fromNodeId}/to/{toNodeId}", server.DeleteEdge)

	// Carga de teste
	server.mux.HandleFunc("POST /test/tree/from/{fromNodeId}", server.requireTestAuth(server.GenerateTree))

	server.mux.HandleFunc("GET /health", server.Health)

	return server
}

// WithHealthCheck registra uma verificação de dependências usada por /health.
func (s *Server) WithHealthCheck(check func(ctx context.Context) error) *Server {
	s.healthCheck = check
	return s
}

// Handler expõe o roteador, usado pelos testes com httptest.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	s.logger.Info("Server started", "port", s.port)

	return s.server.ListenAndServe()
}

// Shutdown para de aceitar conexões e aguarda as requisições em andamento.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
