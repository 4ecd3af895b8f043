package tree

import (
	"fmt"
	"iter"
	"math"
	"supplychaintree/src/domain"
	"supplychaintree/src/domain/entities"
)

const DefaultBatchSize = 5_000

// DefaultArity é max(floor(log10(size)), 1), calculado em inteiros.
func DefaultArity(size int) int {
	arity := 0
	for s := size; s >= 10; s /= 10 {
		arity++
	}
	return max(arity, 1)
}

// Generator enumera em largura (BFS) as arestas de uma árvore sintética com
// exatamente size arestas. Cada pai recebe arity filhos; os ids são
// rootID+1, rootID+2, ... na ordem de criação, e a geração para após size
// arestas (os últimos pais podem ficar com menos filhos).
//
// Como os ids são criados e expandidos na mesma ordem, a fila FIFO de pais
// pendentes é sempre o intervalo rootID, rootID+1, ...: o pai da i-ésima
// aresta é rootID + i/arity. Nenhum estado além de contadores é mantido.
type Generator struct {
	rootID  int64
	size    int
	arity   int
	emitted int
	current entities.Edge
	closed  bool
}

// Generate valida os argumentos antes de produzir qualquer aresta.
// arity nil usa DefaultArity(size).
func Generate(rootID int64, size int, arity *int) (*Generator, error) {
	if size <= 0 {
		return nil, fmt.Errorf("tree.Generate - size must be greater than zero, got %d: %w", size, domain.ErrInvalidArgument)
	}

	arityOrDefault := DefaultArity(size)
	if arity != nil {
		if *arity <= 0 {
			return nil, fmt.Errorf("tree.Generate - arity must be greater than zero, got %d: %w", *arity, domain.ErrInvalidArgument)
		}
		arityOrDefault = *arity
	}

	if rootID > math.MaxInt64-int64(size) {
		return nil, fmt.Errorf("tree.Generate - node ids starting at %d overflow for size %d: %w", rootID, size, domain.ErrInvalidArgument)
	}

	return &Generator{rootID: rootID, size: size, arity: arityOrDefault}, nil
}

func (g *Generator) Arity() int {
	return g.arity
}

func (g *Generator) Next() bool {
	if g.closed || g.emitted >= g.size {
		return false
	}

	i := int64(g.emitted)
	g.current = entities.Edge{
		FromID: g.rootID + i/int64(g.arity),
		ToID:   g.rootID + 1 + i,
	}
	g.emitted++

	return true
}

func (g *Generator) Edge() entities.Edge {
	return g.current
}

func (g *Generator) Err() error {
	return nil
}

func (g *Generator) Close() error {
	g.closed = true
	return nil
}

// Batches agrupa o cursor em lotes de até batchSize arestas, para inserção
// em uma ida ao banco por lote. Cada lote é um slice novo. Interromper o loop
// não fecha o cursor; quem abriu é responsável por isso.
func Batches(edges ContiguousEdgeCursor, batchSize int) iter.Seq2[[]entities.Edge, error] {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return func(yield func([]entities.Edge, error) bool) {
		batch := make([]entities.Edge, 0, batchSize)

		for edges.Next() {
			batch = append(batch, edges.Edge())
			if len(batch) == batchSize {
				if !yield(batch, nil) {
					return
				}
				batch = make([]entities.Edge, 0, batchSize)
			}
		}

		if err := edges.Err(); err != nil {
			yield(nil, err)
			return
		}

		if len(batch) > 0 {
			yield(batch, nil)
		}
	}
}
