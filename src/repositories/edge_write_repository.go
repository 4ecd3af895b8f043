package repositories

import (
	"context"
	"fmt"
	"supplychaintree/src/domain"
	"supplychaintree/src/domain/entities"
	"supplychaintree/src/domain/tree"
	"supplychaintree/src/infra/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EdgeWriteRepository struct {
	writePool *pgxpool.Pool
}

func NewEdgeWriteRepository(writePool *pgxpool.Pool) *EdgeWriteRepository {
	return &EdgeWriteRepository{writePool: writePool}
}

func (r *EdgeWriteRepository) CreateEdge(ctx context.Context, edge entities.Edge) error {
	query := `
		INSERT INTO
			edge (from_id, to_id)
		VALUES
			($1, $2);
	`

	_, err := r.writePool.Exec(ctx, query, edge.FromID, edge.ToID)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("EdgeWriteRepository.CreateEdge - tree edge from %d to %d: %w", edge.FromID, edge.ToID, domain.ErrDuplicateEdge)
		}
		return fmt.Errorf("EdgeWriteRepository.CreateEdge - insert failed: %w", err)
	}

	return nil
}

func (r *EdgeWriteRepository) DeleteEdge(ctx context.Context, edge entities.Edge) error {
	query := `
		DELETE FROM
			edge
		WHERE
			from_id = $1 AND to_id = $2;
	`

	tag, err := r.writePool.Exec(ctx, query, edge.FromID, edge.ToID)
	if err != nil {
		return fmt.Errorf("EdgeWriteRepository.DeleteEdge - delete failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("EdgeWriteRepository.DeleteEdge - tree edge from %d to %d: %w", edge.FromID, edge.ToID, domain.ErrEdgeNotFound)
	}

	return nil
}

// CreateEdges grava o cursor em lotes de batchSize, um COPY por lote, cada
// um na sua própria transação implícita. Em conflito, os lotes anteriores
// continuam gravados; o retorno informa quantas arestas foram persistidas.
func (r *EdgeWriteRepository) CreateEdges(ctx context.Context, edges tree.ContiguousEdgeCursor, batchSize int) (int64, error) {
	var persisted int64

	for batch, err := range tree.Batches(edges, batchSize) {
		if err != nil {
			return persisted, fmt.Errorf("EdgeWriteRepository.CreateEdges - failed to read edges: %w", err)
		}

		copied, err := r.writePool.CopyFrom(
			ctx,
			pgx.Identifier{"edge"},
			[]string{"from_id", "to_id"},
			pgx.CopyFromSlice(len(batch), func(i int) ([]any, error) {
				return []any{batch[i].FromID, batch[i].ToID}, nil
			}),
		)
		if err != nil {
			if postgres.IsUniqueViolation(err) {
				return persisted, fmt.Errorf("EdgeWriteRepository.CreateEdges - batch starting at edge %s after %d persisted edges: %w", batch[0], persisted, domain.ErrEdgeConflict)
			}
			return persisted, fmt.Errorf("EdgeWriteRepository.CreateEdges - failed to copy batch: %w", err)
		}

		persisted += copied
	}

	return persisted, nil
}
