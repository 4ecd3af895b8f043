package domain

import (
	"errors"
	"time"
)

var (
	ErrDuplicateEdge = errors.New("edge already exists")

	ErrEdgeNotFound = errors.New("edge not found")

	ErrTreeNotFound = errors.New("tree not found")

	// Conflito durante a geração em lote; lotes anteriores permanecem gravados.
	ErrEdgeConflict = errors.New("a conflict with an existing edge occurred when creating a tree")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrGenerationInProgress = errors.New("tree generation already in progress for this root")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")
)

// ############################################################
// ############# PROCESSO DE LEITURA DA ÁRVORE ################
// ############################################################

// Node é a visão derivada de um nó pai com todos os seus filhos diretos,
// na ordem em que as arestas foram lidas. Nunca é persistido.
type Node struct {
	ID       int64   `json:"id"`
	Children []int64 `json:"to"`
}

// ############################################################
// ############# PROCESSO DE ESCRITA DA ÁRVORE ################
// ############################################################

// GenerateTreeRequest descreve uma árvore sintética para carga em lote.
// Arity nil usa o valor padrão calculado a partir de Size.
type GenerateTreeRequest struct {
	RootID int64
	Size   int
	Arity  *int
}

type EdgeEventType string

const (
	EdgeCreated   EdgeEventType = "edge.created"
	EdgeDeleted   EdgeEventType = "edge.deleted"
	TreeGenerated EdgeEventType = "tree.generated"
)

// EdgeEvent é publicado após uma escrita confirmada na tabela de arestas.
type EdgeEvent struct {
	Type       EdgeEventType `json:"event_type"`
	FromID     int64         `json:"from_id,omitempty"`
	ToID       int64         `json:"to_id,omitempty"`
	RootID     int64         `json:"root_id,omitempty"`
	Size       int64         `json:"size,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
