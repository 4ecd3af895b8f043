package comparer

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// ChildrenInAnyOrder compara listas de filhos como conjuntos. A ordem dos nós
// continua sendo verificada.
func ChildrenInAnyOrder() cmp.Option {
	return cmpopts.SortSlices(func(a, b int64) bool { return a < b })
}
