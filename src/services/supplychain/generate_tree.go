package supplychain

import (
	"context"
	"fmt"
	"supplychaintree/src/domain"
	"supplychaintree/src/domain/tree"
	"time"
)

// GenerateTree grava uma árvore sintética de req.Size arestas em lotes.
// Em conflito os lotes já gravados permanecem; o retorno informa quantas
// arestas foram persistidas mesmo em caso de erro.
func (s *TreeService) GenerateTree(ctx context.Context, req domain.GenerateTreeRequest) (int64, error) {
	generator, err := tree.Generate(req.RootID, req.Size, req.Arity)
	if err != nil {
		return 0, fmt.Errorf("TreeService.GenerateTree - %w", err)
	}
	defer generator.Close()

	s.logger.Info("Generate tree", "root_id", req.RootID, "size", req.Size, "arity", generator.Arity())

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, req.RootID)
		if err != nil {
			return 0, fmt.Errorf("TreeService.GenerateTree - failed to acquire generation lock: %w", err)
		}
		if release == nil {
			return 0, fmt.Errorf("TreeService.GenerateTree - root %d: %w", req.RootID, domain.ErrGenerationInProgress)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("Failed to release generation lock", "root_id", req.RootID, "error", err)
			}
		}()
	}

	startTime := time.Now()

	persisted, err := s.writer.CreateEdges(ctx, generator, s.batchSize)
	if err != nil {
		s.logger.Warn("Tree generation stopped", "root_id", req.RootID, "persisted", persisted, "error", err)
		return persisted, fmt.Errorf("TreeService.GenerateTree - %w", err)
	}

	s.logger.Info("Tree generated",
		"root_id", req.RootID,
		"size", persisted,
		"elapsed", time.Since(startTime).Round(time.Millisecond))

	s.publish(ctx, domain.EdgeEvent{
		Type:       domain.TreeGenerated,
		RootID:     req.RootID,
		Size:       persisted,
		OccurredAt: time.Now().UTC(),
	})

	return persisted, nil
}
