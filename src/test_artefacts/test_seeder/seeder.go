package test_seeder

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TestSeeder struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) TestSeeder {
	return TestSeeder{pool: pool}
}

// CreateSchema cria a tabela de arestas no banco de teste; o serviço nunca cria schema.
func (ts TestSeeder) CreateSchema(ctx context.Context) {
	query := `
		CREATE TABLE IF NOT EXISTS edge (
			from_id BIGINT NOT NULL,
			to_id   BIGINT NOT NULL,
			PRIMARY KEY (from_id, to_id)
		)`

	if _, err := ts.pool.Exec(ctx, query); err != nil {
		panic(fmt.Sprintf("Seeder.CreateSchema failed: %v", err))
	}
}

func (ts TestSeeder) TruncateTables(ctx context.Context) {
	tables := []string{
		"edge",
	}

	for _, table := range tables {
		_, err := ts.pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s", table))
		if err != nil {
			panic(fmt.Sprintf("Failed to truncate %s: %v", table, err))
		}
	}
}
