package supplychain_test

import (
	"context"
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"supplychaintree/src/domain"
	"supplychaintree/src/domain/entities"
	"supplychaintree/src/domain/tree"
	"supplychaintree/src/services/supplychain"
	"supplychaintree/src/test_artefacts/fakes"
)

var _ = Describe("FetchTree", func() {
	var (
		ctx     context.Context
		store   *fakes.EdgeStore
		service *supplychain.TreeService
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = fakes.NewEdgeStore(
			entities.NewEdge(1, 20), entities.NewEdge(1, 3), entities.NewEdge(1, 4),
			entities.NewEdge(20, 5), entities.NewEdge(20, 6),
			entities.NewEdge(5, 7),
			entities.NewEdge(99, 100),
		)
		logger := slog.New(slog.NewTextHandler(GinkgoWriter, nil))
		service = supplychain.NewTreeService(logger, store, store, 0)
	})

	When("the root has outgoing edges", func() {
		It("should stream one node per parent and release the scan once", func() {
			// ACT
			nodes, err := service.FetchTree(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			result, err := tree.Collect(nodes)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeComparableTo([]domain.Node{
				{ID: 1, Children: []int64{20, 3, 4}},
				{ID: 20, Children: []int64{5, 6}},
				{ID: 5, Children: []int64{7}},
			}))
			Expect(store.Cursors()).To(HaveLen(1))
			Expect(store.Cursors()[0].Closes()).To(Equal(1))
		})

		It("should only include the subtree of the requested root", func() {
			nodes, err := service.FetchTree(ctx, 20)
			Expect(err).NotTo(HaveOccurred())
			result, err := tree.Collect(nodes)

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeComparableTo([]domain.Node{
				{ID: 20, Children: []int64{5, 6}},
				{ID: 5, Children: []int64{7}},
			}))
		})
	})

	When("the root has no outgoing edges", func() {
		It("should return tree not found and release the scan", func() {
			// ACT
			nodes, err := service.FetchTree(ctx, 7)

			// ASSERT
			Expect(nodes).To(BeNil())
			Expect(err).To(MatchError(domain.ErrTreeNotFound))
			Expect(store.Cursors()[0].Closes()).To(Equal(1))
		})
	})

	When("the consumer abandons the stream after the first node", func() {
		It("should release the scan exactly once", func() {
			// ARRANGE
			nodes, err := service.FetchTree(ctx, 1)
			Expect(err).NotTo(HaveOccurred())

			// ACT
			Expect(nodes.Next()).To(BeTrue())
			Expect(nodes.Close()).To(Succeed())
			Expect(nodes.Close()).To(Succeed())

			// ASSERT
			Expect(store.Cursors()[0].Closes()).To(Equal(1))
		})
	})

	When("the scan cannot be opened", func() {
		It("should return the storage error", func() {
			// ARRANGE
			store.ScanErr = errors.New("too many connections")

			// ACT
			_, err := service.FetchTree(ctx, 1)

			// ASSERT
			Expect(err).To(MatchError(store.ScanErr))
		})
	})
})

var _ = Describe("ProcessTree", func() {
	var (
		ctx     context.Context
		store   *fakes.EdgeStore
		service *supplychain.TreeService
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = fakes.NewEdgeStore(
			entities.NewEdge(40, 41), entities.NewEdge(40, 42),
			entities.NewEdge(41, 43), entities.NewEdge(41, 44),
		)
		logger := slog.New(slog.NewTextHandler(GinkgoWriter, nil))
		service = supplychain.NewTreeService(logger, store, store, 0)
	})

	It("should hand every node to the consumer and release once", func() {
		// ARRANGE
		var received []domain.Node

		// ACT
		err := service.ProcessTree(ctx, 40, func(node domain.Node) error {
			received = append(received, node)
			return nil
		})

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(received).To(BeComparableTo([]domain.Node{
			{ID: 40, Children: []int64{41, 42}},
			{ID: 41, Children: []int64{43, 44}},
		}))
		Expect(store.Cursors()[0].Closes()).To(Equal(1))
	})

	It("should stop on consumer error and release once", func() {
		// ARRANGE
		writeErr := errors.New("client disconnected")
		calls := 0

		// ACT
		err := service.ProcessTree(ctx, 40, func(node domain.Node) error {
			calls++
			return writeErr
		})

		// ASSERT
		Expect(err).To(MatchError(writeErr))
		Expect(calls).To(Equal(1))
		Expect(store.Cursors()[0].Closes()).To(Equal(1))
	})

	It("should keep the consumer error when the release also fails", func() {
		// ARRANGE
		writeErr := errors.New("client disconnected")
		store.CloseErr = errors.New("rollback failed")

		// ACT
		err := service.ProcessTree(ctx, 40, func(node domain.Node) error {
			return writeErr
		})

		// ASSERT
		Expect(err).To(MatchError(writeErr))
		Expect(err).To(MatchError(store.CloseErr))
		Expect(store.Cursors()[0].Closes()).To(Equal(1))
	})

	It("should report a release failure after full consumption", func() {
		// ARRANGE
		store.CloseErr = errors.New("rollback failed")

		// ACT
		err := service.ProcessTree(ctx, 40, func(node domain.Node) error { return nil })

		// ASSERT
		Expect(err).To(MatchError(store.CloseErr))
		Expect(store.Cursors()[0].Closes()).To(Equal(1))
	})

	It("should report a read failure in the middle of the scan", func() {
		// ARRANGE
		store.ScanReadErr = errors.New("connection reset")
		var received []domain.Node

		// ACT
		err := service.ProcessTree(ctx, 40, func(node domain.Node) error {
			received = append(received, node)
			return nil
		})

		// ASSERT
		// o run do nó 40 não terminou antes da falha, então nada é emitido
		Expect(err).To(MatchError(store.ScanReadErr))
		Expect(received).To(BeEmpty())
		Expect(store.Cursors()[0].Closes()).To(Equal(1))
	})

	It("should not call the consumer for an unknown tree", func() {
		err := service.ProcessTree(ctx, 1234, func(node domain.Node) error {
			Fail("consumer must not be called")
			return nil
		})

		Expect(err).To(MatchError(domain.ErrTreeNotFound))
	})
})
