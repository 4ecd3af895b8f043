package repositories

import (
	"context"
	"errors"
	"fmt"
	"supplychaintree/src/domain/tree"
	"supplychaintree/src/helper/scope"
	"supplychaintree/src/infra/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const DefaultMaxDepth = 10_000

type TreeQueryRepository struct {
	pool     *pgxpool.Pool
	maxDepth int
}

func NewTreeQueryRepository(pool *pgxpool.Pool, maxDepth int) *TreeQueryRepository {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &TreeQueryRepository{pool: pool, maxDepth: maxDepth}
}

// ScanReachable abre um cursor com todas as arestas alcançáveis a partir de
// rootID. A ordenação por (depth, from_id) garante que os filhos de um mesmo
// pai venham contíguos e que pais venham antes dos netos; o limite de
// profundidade interrompe ciclos criados por escrita direta de arestas.
//
// O cursor mantém uma transação somente leitura aberta até Close, que fecha
// as rows e faz rollback (equivalente a commit para uma leitura pura).
// Um root sem arestas resulta em um cursor vazio.
func (r *TreeQueryRepository) ScanReachable(ctx context.Context, rootID int64) (tree.ContiguousEdgeCursor, error) {
	query := `
		WITH RECURSIVE reachable (from_id, to_id, depth) AS (
			SELECT
				from_id,
				to_id,
				0
			FROM
				edge
			WHERE
				from_id = $1

			UNION ALL

			SELECT
				e.from_id,
				e.to_id,
				r.depth + 1
			FROM
				edge e
			JOIN
				reachable r ON e.from_id = r.to_id
			WHERE
				r.depth < $2
		)
		SELECT
			from_id,
			to_id
		FROM
			reachable
		ORDER BY
			depth, from_id, to_id;
	`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("TreeQueryRepository.ScanReachable - failed to begin read-only transaction: %w", err)
	}

	releases := scope.New()
	releases.Defer(func() error {
		// o contexto da requisição pode já estar cancelado (cliente desconectou)
		if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			return fmt.Errorf("TreeQueryRepository.ScanReachable - failed to rollback read-only transaction: %w", err)
		}
		return nil
	})

	rows, err := tx.Query(ctx, query, rootID, r.maxDepth)
	if err != nil {
		queryErr := fmt.Errorf("TreeQueryRepository.ScanReachable - reachable edges query failed: %w", err)
		return nil, scope.WithCleanup(queryErr, releases.Release())
	}

	return postgres.NewRowsEdgeCursor(rows, releases), nil
}
