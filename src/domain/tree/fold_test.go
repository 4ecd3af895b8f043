package tree_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"supplychaintree/src/domain"
	"supplychaintree/src/domain/entities"
	"supplychaintree/src/domain/tree"
	"supplychaintree/src/test_artefacts/fakes"
)

func edges(pairs ...[2]int64) []entities.Edge {
	result := make([]entities.Edge, 0, len(pairs))
	for _, p := range pairs {
		result = append(result, entities.NewEdge(p[0], p[1]))
	}
	return result
}

var _ = Describe("Fold", func() {
	Context("empty input", func() {
		It("should return tree not found and close the input", func() {
			// ARRANGE
			cursor := fakes.NewCountingCursor(tree.NewSliceEdgeCursor())

			// ACT
			nodes, err := tree.Fold(7, cursor)

			// ASSERT
			Expect(nodes).To(BeNil())
			Expect(err).To(MatchError(domain.ErrTreeNotFound))
			Expect(cursor.Closes()).To(Equal(1))
		})

		It("should return the read error instead of tree not found", func() {
			// ARRANGE
			readErr := errors.New("connection reset")
			cursor := fakes.NewCountingCursor(tree.NewSliceEdgeCursor()).FailingAfter(0, readErr)

			// ACT
			_, err := tree.Fold(7, cursor)

			// ASSERT
			Expect(err).To(MatchError(readErr))
			Expect(err).NotTo(MatchError(domain.ErrTreeNotFound))
			Expect(cursor.Closes()).To(Equal(1))
		})
	})

	Context("parent-contiguous input", func() {
		It("should group children by parent in encounter order", func() {
			// ARRANGE
			input := tree.NewSliceEdgeCursor(edges(
				[2]int64{1, 20}, [2]int64{1, 3}, [2]int64{1, 4},
				[2]int64{20, 5}, [2]int64{20, 6},
				[2]int64{5, 7},
			)...)

			// ACT
			nodes, err := tree.Fold(1, input)
			Expect(err).NotTo(HaveOccurred())
			result, err := tree.Collect(nodes)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeComparableTo([]domain.Node{
				{ID: 1, Children: []int64{20, 3, 4}},
				{ID: 20, Children: []int64{5, 6}},
				{ID: 5, Children: []int64{7}},
			}))
		})

		It("should not emit leaves as nodes", func() {
			// ARRANGE
			input := tree.NewSliceEdgeCursor(edges(
				[2]int64{40, 41}, [2]int64{40, 42}, [2]int64{41, 43}, [2]int64{41, 44},
			)...)

			// ACT
			nodes, err := tree.Fold(40, input)
			Expect(err).NotTo(HaveOccurred())
			result, err := tree.Collect(nodes)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeComparableTo([]domain.Node{
				{ID: 40, Children: []int64{41, 42}},
				{ID: 41, Children: []int64{43, 44}},
			}))
		})

		It("should emit a single node for a single edge", func() {
			// ACT
			nodes, err := tree.Fold(9, tree.NewSliceEdgeCursor(entities.NewEdge(9, 10)))
			Expect(err).NotTo(HaveOccurred())
			result, err := tree.Collect(nodes)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal([]domain.Node{{ID: 9, Children: []int64{10}}}))
		})

		It("should preserve every edge across the emitted nodes", func() {
			for _, shape := range [][2]int{{1, 1}, {10, 3}, {99, 2}, {1000, 7}, {2500, 50}} {
				// ARRANGE
				size, arity := shape[0], shape[1]
				generated, err := tree.Generate(100, size, &arity)
				Expect(err).NotTo(HaveOccurred())
				input, err := tree.Drain(generated)
				Expect(err).NotTo(HaveOccurred())

				// ACT
				nodes, err := tree.Fold(100, tree.NewSliceEdgeCursor(input...))
				Expect(err).NotTo(HaveOccurred())
				result, err := tree.Collect(nodes)
				Expect(err).NotTo(HaveOccurred())

				// ASSERT
				distinctParents := map[int64]bool{}
				for _, e := range input {
					distinctParents[e.FromID] = true
				}
				Expect(result).To(HaveLen(len(distinctParents)))

				var rebuilt []entities.Edge
				for _, node := range result {
					Expect(distinctParents).To(HaveKey(node.ID))
					for _, child := range node.Children {
						rebuilt = append(rebuilt, entities.NewEdge(node.ID, child))
					}
				}
				Expect(rebuilt).To(Equal(input))
			}
		})
	})

	Context("resource release", func() {
		It("should release the input once when consumed to completion", func() {
			// ARRANGE
			cursor := fakes.NewCountingCursor(tree.NewSliceEdgeCursor(edges([2]int64{1, 2}, [2]int64{2, 3})...))
			nodes, err := tree.Fold(1, cursor)
			Expect(err).NotTo(HaveOccurred())

			// ACT
			for nodes.Next() {
			}
			Expect(cursor.Closes()).To(Equal(1))
			Expect(nodes.Close()).To(Succeed())

			// ASSERT
			Expect(nodes.Err()).NotTo(HaveOccurred())
			Expect(cursor.Closes()).To(Equal(1))
		})

		It("should release the input once when abandoned after the first node", func() {
			// ARRANGE
			cursor := fakes.NewCountingCursor(tree.NewSliceEdgeCursor(edges([2]int64{1, 2}, [2]int64{2, 3}, [2]int64{3, 4})...))
			nodes, err := tree.Fold(1, cursor)
			Expect(err).NotTo(HaveOccurred())

			// ACT
			Expect(nodes.Next()).To(BeTrue())
			Expect(nodes.Node().ID).To(Equal(int64(1)))
			Expect(nodes.Close()).To(Succeed())
			Expect(nodes.Close()).To(Succeed())

			// ASSERT
			Expect(cursor.Closes()).To(Equal(1))
			Expect(nodes.Next()).To(BeFalse())
		})

		It("should release the input once when the range loop breaks early", func() {
			// ARRANGE
			cursor := fakes.NewCountingCursor(tree.NewSliceEdgeCursor(edges([2]int64{1, 2}, [2]int64{2, 3})...))
			nodes, err := tree.Fold(1, cursor)
			Expect(err).NotTo(HaveOccurred())

			// ACT
			for range nodes.All() {
				break
			}

			// ASSERT
			Expect(cursor.Closes()).To(Equal(1))
		})

		It("should surface a read error after the nodes already emitted and release once", func() {
			// ARRANGE
			readErr := errors.New("cursor broken")
			cursor := fakes.NewCountingCursor(tree.NewSliceEdgeCursor(edges([2]int64{1, 2}, [2]int64{2, 3}, [2]int64{3, 4})...)).
				FailingAfter(2, readErr)
			nodes, err := tree.Fold(1, cursor)
			Expect(err).NotTo(HaveOccurred())

			// ACT
			result, err := tree.Collect(nodes)

			// ASSERT
			Expect(err).To(MatchError(readErr))
			Expect(result).To(Equal([]domain.Node{{ID: 1, Children: []int64{2}}}))
			Expect(cursor.Closes()).To(Equal(1))
		})

		It("should keep the primary error when release also fails", func() {
			// ARRANGE
			readErr := errors.New("cursor broken")
			closeErr := errors.New("rollback failed")
			cursor := fakes.NewCountingCursor(tree.NewSliceEdgeCursor(edges([2]int64{1, 2}, [2]int64{2, 3})...)).
				FailingAfter(1, readErr).
				FailingClose(closeErr)
			nodes, err := tree.Fold(1, cursor)
			Expect(err).NotTo(HaveOccurred())

			// ACT
			Expect(nodes.Next()).To(BeFalse())

			// ASSERT
			Expect(nodes.Err()).To(MatchError(readErr))
			Expect(nodes.Err()).To(MatchError(closeErr))
			Expect(cursor.Closes()).To(Equal(1))
		})
	})
})
