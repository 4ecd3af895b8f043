package test_seeder

import (
	"context"
	"fmt"
	"supplychaintree/src/domain/entities"
)

// InsertEdges inserts edges into the database for testing
func (ts TestSeeder) InsertEdges(ctx context.Context, edges ...entities.Edge) {
	query := `
		INSERT INTO edge (from_id, to_id)
		VALUES ($1, $2)`

	for _, edge := range edges {
		if _, err := ts.pool.Exec(ctx, query, edge.FromID, edge.ToID); err != nil {
			panic(fmt.Sprintf("Seeder.InsertEdges failed for %s: %v", edge, err))
		}
	}
}
