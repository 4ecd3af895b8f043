package supplychain

import (
	"context"
	"fmt"
	"supplychaintree/src/domain"
	"supplychaintree/src/domain/entities"
	"time"
)

func (s *TreeService) DeleteEdge(ctx context.Context, fromNodeID int64, toNodeID int64) error {
	s.logger.Info("Delete edge", "from_id", fromNodeID, "to_id", toNodeID)

	if err := s.writer.DeleteEdge(ctx, entities.NewEdge(fromNodeID, toNodeID)); err != nil {
		return fmt.Errorf("TreeService.DeleteEdge - %w", err)
	}

	s.publish(ctx, domain.EdgeEvent{
		Type:       domain.EdgeDeleted,
		FromID:     fromNodeID,
		ToID:       toNodeID,
		OccurredAt: time.Now().UTC(),
	})

	return nil
}
