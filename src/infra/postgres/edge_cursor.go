package postgres

import (
	"fmt"
	"supplychaintree/src/domain/entities"
	"supplychaintree/src/helper/scope"

	"github.com/jackc/pgx/v5"
)

// RowsEdgeCursor lê arestas (from_id, to_id) de pgx.Rows sob demanda.
// Close libera, em uma única operação, tudo que foi registrado no scope
// (rows e a transação que as mantém abertas).
type RowsEdgeCursor struct {
	rows    pgx.Rows
	scope   *scope.Scope
	current entities.Edge
	err     error
}

func NewRowsEdgeCursor(rows pgx.Rows, s *scope.Scope) *RowsEdgeCursor {
	s.Defer(func() error {
		rows.Close()
		return nil
	})

	return &RowsEdgeCursor{rows: rows, scope: s}
}

func (c *RowsEdgeCursor) Next() bool {
	if c.err != nil || c.scope.Released() {
		return false
	}

	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			c.err = fmt.Errorf("RowsEdgeCursor - error iterating edge rows: %w", err)
		}
		return false
	}

	if err := c.rows.Scan(&c.current.FromID, &c.current.ToID); err != nil {
		c.err = fmt.Errorf("RowsEdgeCursor - failed to scan edge: %w", err)
		return false
	}

	return true
}

func (c *RowsEdgeCursor) Edge() entities.Edge {
	return c.current
}

func (c *RowsEdgeCursor) Err() error {
	return c.err
}

func (c *RowsEdgeCursor) Close() error {
	return c.scope.Release()
}
