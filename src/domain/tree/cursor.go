// Package tree reconstrói e gera árvores de cadeia de suprimentos a partir de
// sequências de arestas lidas sob demanda.
package tree

import (
	"supplychaintree/src/domain/entities"
	"supplychaintree/src/helper/scope"
)

// ContiguousEdgeCursor é um cursor de leitura única e somente para frente.
//
// Contrato: todas as arestas com o mesmo FromID aparecem em uma única sequência
// contígua, e um pai aparece antes das arestas dos seus netos. Fold depende
// disso e não revalida a ordem.
//
// Next avança para a próxima aresta e retorna false no fim ou em erro; Err
// informa qual dos dois. Close libera os recursos subjacentes e pode ser
// chamado mais de uma vez.
type ContiguousEdgeCursor interface {
	Next() bool
	Edge() entities.Edge
	Err() error
	Close() error
}

// SliceEdgeCursor expõe um slice em memória como ContiguousEdgeCursor.
type SliceEdgeCursor struct {
	edges   []entities.Edge
	pos     int
	current entities.Edge
	closed  bool
}

func NewSliceEdgeCursor(edges ...entities.Edge) *SliceEdgeCursor {
	return &SliceEdgeCursor{edges: edges}
}

func (c *SliceEdgeCursor) Next() bool {
	if c.closed || c.pos >= len(c.edges) {
		return false
	}
	c.current = c.edges[c.pos]
	c.pos++
	return true
}

func (c *SliceEdgeCursor) Edge() entities.Edge {
	return c.current
}

func (c *SliceEdgeCursor) Err() error {
	return nil
}

func (c *SliceEdgeCursor) Close() error {
	c.closed = true
	return nil
}

// Drain lê o cursor até o fim e o fecha. Uso restrito a árvores pequenas e testes.
func Drain(edges ContiguousEdgeCursor) ([]entities.Edge, error) {
	var all []entities.Edge
	for edges.Next() {
		all = append(all, edges.Edge())
	}
	err := edges.Err()
	return all, scope.WithCleanup(err, edges.Close())
}
