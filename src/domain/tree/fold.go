package tree

import (
	"fmt"
	"iter"
	"supplychaintree/src/domain"
	"supplychaintree/src/domain/entities"
	"supplychaintree/src/helper/scope"
)

// NodeCursor agrupa as arestas contíguas de cada pai em um domain.Node,
// emitindo cada nó assim que a sequência de filhos dele termina.
// Memória extra: apenas a lista de filhos do nó corrente.
type NodeCursor struct {
	rootID  int64
	edges   ContiguousEdgeCursor
	pending *entities.Edge
	current domain.Node
	err     error
	closed  bool
	closeFn func() error
	release error
}

// Fold lê a primeira aresta imediatamente: um cursor vazio significa que a
// árvore não existe. Nesse caso, ou em erro de leitura, o cursor de entrada é
// fechado antes do retorno.
func Fold(rootID int64, edges ContiguousEdgeCursor) (*NodeCursor, error) {
	if !edges.Next() {
		err := edges.Err()
		if err == nil {
			err = fmt.Errorf("tree.Fold - tree starting from %d does not exist: %w", rootID, domain.ErrTreeNotFound)
		} else {
			err = fmt.Errorf("tree.Fold - failed to read first edge of tree %d: %w", rootID, err)
		}
		return nil, scope.WithCleanup(err, edges.Close())
	}

	first := edges.Edge()

	return &NodeCursor{
		rootID:  rootID,
		edges:   edges,
		pending: &first,
		closeFn: edges.Close,
	}, nil
}

// Next monta o próximo nó. Retorna false no fim da entrada, em erro ou após
// Close; nos dois primeiros casos a entrada é liberada automaticamente.
func (c *NodeCursor) Next() bool {
	if c.closed || c.err != nil {
		return false
	}

	if c.pending == nil {
		c.finish(nil)
		return false
	}

	node := domain.Node{ID: c.pending.FromID, Children: []int64{c.pending.ToID}}
	c.pending = nil

	for c.edges.Next() {
		edge := c.edges.Edge()
		if edge.FromID != node.ID {
			// pai mudou: todos os filhos de node já foram lidos
			c.pending = &edge
			break
		}
		node.Children = append(node.Children, edge.ToID)
	}

	if c.pending == nil {
		if err := c.edges.Err(); err != nil {
			c.finish(fmt.Errorf("tree.NodeCursor - failed to read edges of tree %d: %w", c.rootID, err))
			return false
		}
	}

	c.current = node
	return true
}

func (c *NodeCursor) Node() domain.Node {
	return c.current
}

func (c *NodeCursor) Err() error {
	return c.err
}

// Close libera a entrada exatamente uma vez, independente de quantas vezes for chamado.
func (c *NodeCursor) Close() error {
	if !c.closed {
		c.closed = true
		c.release = c.closeFn()
	}
	return c.release
}

// All adapta o cursor para range-over-func. Interromper o loop fecha o cursor.
func (c *NodeCursor) All() iter.Seq2[domain.Node, error] {
	return func(yield func(domain.Node, error) bool) {
		defer c.Close()

		for c.Next() {
			if !yield(c.Node(), nil) {
				return
			}
		}

		if err := c.Err(); err != nil {
			yield(domain.Node{}, err)
		}
	}
}

func (c *NodeCursor) finish(err error) {
	closeErr := c.Close()
	if err != nil {
		c.err = scope.WithCleanup(err, closeErr)
		return
	}
	if closeErr != nil {
		c.err = fmt.Errorf("tree.NodeCursor - failed to release edges of tree %d: %w", c.rootID, closeErr)
	}
}

// Collect materializa todos os nós. Uso restrito a árvores pequenas e testes.
func Collect(nodes *NodeCursor) ([]domain.Node, error) {
	var all []domain.Node
	for node, err := range nodes.All() {
		if err != nil {
			return all, err
		}
		all = append(all, node)
	}
	return all, nil
}
