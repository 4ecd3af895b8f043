package supplychain

import (
	"context"
	"errors"
	"fmt"
	"supplychaintree/src/domain"
	"supplychaintree/src/domain/tree"
	"supplychaintree/src/helper/scope"
)

// FetchTree abre o cursor de arestas alcançáveis e o agrupa em nós sob demanda.
//
// Quem recebe o NodeCursor é dono dele e precisa chamar Close (ou consumir até
// o fim): isso fecha o cursor do banco e a transação de leitura, exatamente
// uma vez. Uma árvore vazia retorna domain.ErrTreeNotFound já liberada.
func (s *TreeService) FetchTree(ctx context.Context, rootID int64) (*tree.NodeCursor, error) {
	s.logger.Info("Fetch tree", "root_id", rootID)

	edges, err := s.reader.ScanReachable(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("TreeService.FetchTree - failed to scan reachable edges: %w", err)
	}

	nodes, err := tree.Fold(rootID, edges)
	if err != nil {
		return nil, fmt.Errorf("TreeService.FetchTree - %w", err)
	}

	return nodes, nil
}

// ProcessTree entrega cada nó a consume e garante a liberação dos recursos em
// todos os caminhos de saída. Um erro de consume interrompe a leitura; um erro
// de liberação nunca substitui o erro original.
func (s *TreeService) ProcessTree(ctx context.Context, rootID int64, consume func(node domain.Node) error) (err error) {
	nodes, err := s.FetchTree(ctx, rootID)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := nodes.Close()
		if closeErr == nil || errors.Is(err, closeErr) {
			return
		}
		err = scope.WithCleanup(err, fmt.Errorf("TreeService.ProcessTree - failed to release tree %d: %w", rootID, closeErr))
	}()

	for nodes.Next() {
		if err := consume(nodes.Node()); err != nil {
			return err
		}
	}

	return nodes.Err()
}
