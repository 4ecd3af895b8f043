package fakes

import (
	"context"
	"fmt"
	"sync"
	"supplychaintree/src/domain"
	"supplychaintree/src/domain/entities"
	"supplychaintree/src/domain/tree"
)

// EdgeStore é uma implementação em memória do armazenamento de arestas,
// instrumentada para os testes de serviço: registra cada cursor aberto e
// o tamanho de cada lote gravado.
type EdgeStore struct {
	mu          sync.Mutex
	edges       []entities.Edge
	index       map[entities.Edge]bool
	cursors     []*CountingCursor
	batchSizes  []int
	ScanErr     error
	ScanReadErr error
	CloseErr    error
}

func NewEdgeStore(edges ...entities.Edge) *EdgeStore {
	store := &EdgeStore{index: map[entities.Edge]bool{}}
	for _, edge := range edges {
		store.insert(edge)
	}
	return store
}

func (s *EdgeStore) insert(edge entities.Edge) {
	s.edges = append(s.edges, edge)
	s.index[edge] = true
}

func (s *EdgeStore) CreateEdge(ctx context.Context, edge entities.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index[edge] {
		return fmt.Errorf("fakes.EdgeStore.CreateEdge - %s: %w", edge, domain.ErrDuplicateEdge)
	}
	s.insert(edge)
	return nil
}

func (s *EdgeStore) DeleteEdge(ctx context.Context, edge entities.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.index[edge] {
		return fmt.Errorf("fakes.EdgeStore.DeleteEdge - %s: %w", edge, domain.ErrEdgeNotFound)
	}
	delete(s.index, edge)
	for i, existing := range s.edges {
		if existing == edge {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			break
		}
	}
	return nil
}

// CreateEdges aplica lote a lote; um lote com conflito (com o store ou dentro do
// próprio lote, como a chave primária faria) não é aplicado, os anteriores permanecem.
func (s *EdgeStore) CreateEdges(ctx context.Context, edges tree.ContiguousEdgeCursor, batchSize int) (int64, error) {
	var persisted int64

	for batch, err := range tree.Batches(edges, batchSize) {
		if err != nil {
			return persisted, err
		}

		s.mu.Lock()
		seen := make(map[entities.Edge]bool, len(batch))
		for _, edge := range batch {
			if s.index[edge] || seen[edge] {
				s.mu.Unlock()
				return persisted, fmt.Errorf("fakes.EdgeStore.CreateEdges - %s: %w", edge, domain.ErrEdgeConflict)
			}
			seen[edge] = true
		}
		for _, edge := range batch {
			s.insert(edge)
		}
		s.batchSizes = append(s.batchSizes, len(batch))
		s.mu.Unlock()

		persisted += int64(len(batch))
	}

	return persisted, nil
}

// ScanReachable emite as arestas em largura, com os filhos de cada pai na ordem de inserção.
func (s *EdgeStore) ScanReachable(ctx context.Context, rootID int64) (tree.ContiguousEdgeCursor, error) {
	if s.ScanErr != nil {
		return nil, s.ScanErr
	}

	s.mu.Lock()
	children := map[int64][]int64{}
	for _, edge := range s.edges {
		children[edge.FromID] = append(children[edge.FromID], edge.ToID)
	}
	s.mu.Unlock()

	var reachable []entities.Edge
	visited := map[int64]bool{rootID: true}
	queue := []int64{rootID}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, child := range children[parent] {
			reachable = append(reachable, entities.NewEdge(parent, child))
			if !visited[child] {
				visited[child] = true
				queue = append(queue, child)
			}
		}
	}

	cursor := NewCountingCursor(tree.NewSliceEdgeCursor(reachable...)).FailingClose(s.CloseErr)
	if s.ScanReadErr != nil {
		cursor.FailingAfter(len(reachable)/2, s.ScanReadErr)
	}

	s.mu.Lock()
	s.cursors = append(s.cursors, cursor)
	s.mu.Unlock()

	return cursor, nil
}

func (s *EdgeStore) Edges() []entities.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.Edge(nil), s.edges...)
}

func (s *EdgeStore) Contains(edge entities.Edge) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index[edge]
}

func (s *EdgeStore) Cursors() []*CountingCursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*CountingCursor(nil), s.cursors...)
}

func (s *EdgeStore) BatchSizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.batchSizes...)
}
