package test_seeder

import (
	"context"
	"supplychaintree/src/domain/entities"
)

// SelectEdgesFrom retrieves every edge whose parent is one of fromIDs
func (ts TestSeeder) SelectEdgesFrom(ctx context.Context, fromIDs ...int64) ([]entities.Edge, error) {
	query := `SELECT from_id, to_id
			  FROM edge WHERE from_id = ANY($1)
			  ORDER BY from_id, to_id`

	rows, err := ts.pool.Query(ctx, query, fromIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []entities.Edge
	for rows.Next() {
		var edge entities.Edge
		if err := rows.Scan(&edge.FromID, &edge.ToID); err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}

	return edges, rows.Err()
}

func (ts TestSeeder) CountEdges(ctx context.Context) (int64, error) {
	var count int64
	err := ts.pool.QueryRow(ctx, `SELECT count(*) FROM edge`).Scan(&count)
	return count, err
}
