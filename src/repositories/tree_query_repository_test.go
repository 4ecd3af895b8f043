package repositories_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"supplychaintree/src/domain"
	"supplychaintree/src/domain/entities"
	"supplychaintree/src/domain/tree"
	"supplychaintree/src/infra/postgres"
	"supplychaintree/src/repositories"
	"supplychaintree/src/test_artefacts/comparer"
	"supplychaintree/src/test_artefacts/test_seeder"
)

var _ = Describe("TreeQueryRepository", func() {
	var (
		ctx                 context.Context
		readWriteClient     *postgres.ReadWriteClient
		testSeeder          test_seeder.TestSeeder
		treeQueryRepository *repositories.TreeQueryRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		readWriteClient, testSeeder = newTestDatabase(ctx)
		treeQueryRepository = repositories.NewTreeQueryRepository(readWriteClient.GetReadPool(), 0)
	})

	It("should stream the reachable edges grouped by parent", func() {
		// ARRANGE
		testSeeder.InsertEdges(ctx,
			entities.NewEdge(41, 44),
			entities.NewEdge(40, 42),
			entities.NewEdge(41, 43),
			entities.NewEdge(40, 41),
			entities.NewEdge(99, 100),
		)

		// ACT
		edges, err := treeQueryRepository.ScanReachable(ctx, 40)
		Expect(err).NotTo(HaveOccurred())
		nodes, err := tree.Fold(40, edges)
		Expect(err).NotTo(HaveOccurred())
		result, err := tree.Collect(nodes)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(BeComparableTo([]domain.Node{
			{ID: 40, Children: []int64{42, 41}},
			{ID: 41, Children: []int64{44, 43}},
		}, comparer.ChildrenInAnyOrder()))
	})

	It("should return an empty cursor for a root without edges", func() {
		edges, err := treeQueryRepository.ScanReachable(ctx, 43)
		Expect(err).NotTo(HaveOccurred())

		Expect(tree.Drain(edges)).To(BeEmpty())
	})

	It("should return the generated tree in the same order it was produced", func() {
		// ARRANGE
		arity := 3
		generator, err := tree.Generate(500, 1_000, &arity)
		Expect(err).NotTo(HaveOccurred())
		_, err = repositories.NewEdgeWriteRepository(readWriteClient.GetWritePool()).CreateEdges(ctx, generator, 250)
		Expect(err).NotTo(HaveOccurred())

		expected, err := tree.Generate(500, 1_000, &arity)
		Expect(err).NotTo(HaveOccurred())
		expectedEdges, err := tree.Drain(expected)
		Expect(err).NotTo(HaveOccurred())

		// ACT
		edges, err := treeQueryRepository.ScanReachable(ctx, 500)
		Expect(err).NotTo(HaveOccurred())
		result, err := tree.Drain(edges)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal(expectedEdges))
	})

	It("should stop at the depth limit when edges form a cycle", func() {
		// ARRANGE
		testSeeder.InsertEdges(ctx, entities.NewEdge(1, 2), entities.NewEdge(2, 1))
		limited := repositories.NewTreeQueryRepository(readWriteClient.GetReadPool(), 5)

		// ACT
		edges, err := limited.ScanReachable(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		result, err := tree.Drain(edges)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(HaveLen(6))
	})

	It("should release the read-only transaction on early close", func() {
		// ARRANGE
		testSeeder.InsertEdges(ctx, entities.NewEdge(1, 2), entities.NewEdge(1, 3), entities.NewEdge(2, 4))

		// ACT
		edges, err := treeQueryRepository.ScanReachable(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(edges.Next()).To(BeTrue())

		// ASSERT
		Expect(edges.Close()).To(Succeed())
		Expect(edges.Close()).To(Succeed())
		Eventually(func() int32 {
			return readWriteClient.GetReadPool().Stat().AcquiredConns()
		}).Should(BeZero())
	})
})
