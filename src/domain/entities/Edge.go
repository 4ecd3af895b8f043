package entities

import "fmt"

// Edge é a relação direcionada pai -> filho da cadeia de suprimentos.
// A identidade é o próprio par (FromID, ToID).
type Edge struct {
	FromID int64 `json:"from_id"`
	ToID   int64 `json:"to_id"`
}

func NewEdge(fromID int64, toID int64) Edge {
	return Edge{FromID: fromID, ToID: toID}
}

func (e Edge) String() string {
	return fmt.Sprintf("%d->%d", e.FromID, e.ToID)
}
