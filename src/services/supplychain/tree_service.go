package supplychain

import (
	"context"
	"log/slog"
	"supplychaintree/src/domain"
	"supplychaintree/src/domain/entities"
	"supplychaintree/src/domain/tree"
)

type TreeReader interface {
	// ScanReachable deve retornar um cursor parent-contiguous; vazio quando rootID não tem arestas.
	ScanReachable(ctx context.Context, rootID int64) (tree.ContiguousEdgeCursor, error)
}

type EdgeWriter interface {
	CreateEdge(ctx context.Context, edge entities.Edge) error
	DeleteEdge(ctx context.Context, edge entities.Edge) error
	CreateEdges(ctx context.Context, edges tree.ContiguousEdgeCursor, batchSize int) (int64, error)
}

type GenerationLocker interface {
	// Acquire retorna nil quando outra geração já detém o root.
	Acquire(ctx context.Context, rootID int64) (func(context.Context) error, error)
}

type EventPublisher interface {
	PublishEdgeEvents(ctx context.Context, events ...domain.EdgeEvent) error
}

type TreeService struct {
	logger    *slog.Logger
	reader    TreeReader
	writer    EdgeWriter
	locker    GenerationLocker
	publisher EventPublisher
	batchSize int
}

func NewTreeService(
	logger *slog.Logger,
	reader TreeReader,
	writer EdgeWriter,
	batchSize int,
) *TreeService {
	if batchSize <= 0 {
		batchSize = tree.DefaultBatchSize
	}

	return &TreeService{
		logger:    logger,
		reader:    reader,
		writer:    writer,
		batchSize: batchSize,
	}
}

func (s *TreeService) WithGenerationLocker(locker GenerationLocker) *TreeService {
	s.locker = locker
	return s
}

func (s *TreeService) WithEventPublisher(publisher EventPublisher) *TreeService {
	s.publisher = publisher
	return s
}

// publish é best-effort: a escrita já foi confirmada no banco.
func (s *TreeService) publish(ctx context.Context, event domain.EdgeEvent) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishEdgeEvents(ctx, event); err != nil {
		s.logger.Warn("Failed to publish edge event", "event_type", event.Type, "error", err)
	}
}
