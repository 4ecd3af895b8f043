package stubs

import (
	"supplychaintree/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type EdgeStub struct {
	edge entities.Edge
}

func NewEdgeStub() EdgeStub {
	fromID := int64(gofakeit.Number(1, 1_000_000))

	edge := entities.Edge{
		FromID: fromID,
		ToID:   fromID + int64(gofakeit.Number(1, 1_000_000)),
	}

	return EdgeStub{edge: edge}
}

func (es EdgeStub) WithFromID(fromID int64) EdgeStub {
	es.edge.FromID = fromID
	return es
}

func (es EdgeStub) WithToID(toID int64) EdgeStub {
	es.edge.ToID = toID
	return es
}

func (es EdgeStub) Get() entities.Edge {
	return es.edge
}

// NewRootID sorteia um root em uma faixa alta para não colidir entre testes.
func NewRootID() int64 {
	return int64(gofakeit.Number(10_000_000, 900_000_000))
}
