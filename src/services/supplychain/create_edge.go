package supplychain

import (
	"context"
	"fmt"
	"supplychaintree/src/domain"
	"supplychaintree/src/domain/entities"
	"time"
)

// CreateEdge não valida a invariante de floresta (múltiplos pais ou ciclos).
func (s *TreeService) CreateEdge(ctx context.Context, fromNodeID int64, toNodeID int64) error {
	s.logger.Info("Create edge", "from_id", fromNodeID, "to_id", toNodeID)

	if err := s.writer.CreateEdge(ctx, entities.NewEdge(fromNodeID, toNodeID)); err != nil {
		return fmt.Errorf("TreeService.CreateEdge - %w", err)
	}

	s.publish(ctx, domain.EdgeEvent{
		Type:       domain.EdgeCreated,
		FromID:     fromNodeID,
		ToID:       toNodeID,
		OccurredAt: time.Now().UTC(),
	})

	return nil
}
