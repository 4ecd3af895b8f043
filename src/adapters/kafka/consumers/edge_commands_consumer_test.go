package consumers_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"supplychaintree/src/adapters/kafka/consumers"
	"supplychaintree/src/domain/entities"
	"supplychaintree/src/infra/kafka"
	"supplychaintree/src/services/supplychain"
	"supplychaintree/src/test_artefacts/fakes"
)

func commandMessage(operation consumers.EdgeOperation, fromID int64, toID int64) kafka.Message {
	value, err := json.Marshal(consumers.EdgeCommandMessage{
		CommandID: "cmd",
		Operation: operation,
		FromID:    &fromID,
		ToID:      &toID,
	})
	Expect(err).NotTo(HaveOccurred())
	return kafka.Message{Key: "cmd", Value: value}
}

type failingWriter struct {
	*fakes.EdgeStore
	err error
}

func (w failingWriter) CreateEdge(ctx context.Context, edge entities.Edge) error {
	return w.err
}

var _ = Describe("EdgeCommandsConsumer", func() {
	var (
		ctx       context.Context
		logger    *slog.Logger
		store     *fakes.EdgeStore
		publisher *fakes.EventPublisher
		consumer  *consumers.EdgeCommandsConsumer
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger = slog.New(slog.NewTextHandler(GinkgoWriter, nil))
		store = fakes.NewEdgeStore(entities.NewEdge(1, 2))
		publisher = &fakes.EventPublisher{}
		service := supplychain.NewTreeService(logger, store, store, 0).WithEventPublisher(publisher)
		consumer = consumers.NewEdgeCommandsConsumer(logger, service)
	})

	It("should apply the commands in order", func() {
		// ACT
		err := consumer.HandleMessages(ctx, []kafka.Message{
			commandMessage(consumers.CreateEdgeOperation, 1, 3),
			commandMessage(consumers.CreateEdgeOperation, 3, 4),
			commandMessage(consumers.DeleteEdgeOperation, 1, 2),
		})

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Edges()).To(Equal([]entities.Edge{{FromID: 1, ToID: 3}, {FromID: 3, ToID: 4}}))
		Expect(publisher.Events()).To(HaveLen(3))
	})

	It("should be idempotent when a batch is replayed", func() {
		batch := []kafka.Message{
			commandMessage(consumers.CreateEdgeOperation, 5, 6),
			commandMessage(consumers.DeleteEdgeOperation, 1, 2),
		}

		Expect(consumer.HandleMessages(ctx, batch)).To(Succeed())
		Expect(consumer.HandleMessages(ctx, batch)).To(Succeed())

		Expect(store.Edges()).To(Equal([]entities.Edge{{FromID: 5, ToID: 6}}))
	})

	It("should discard malformed and unknown commands", func() {
		err := consumer.HandleMessages(ctx, []kafka.Message{
			{Key: "broken", Value: []byte("{not json")},
			commandMessage("upsert", 7, 8),
			{Key: "missing", Value: []byte(`{"command_id":"c1","operation":"create","to_id":8}`)},
			commandMessage(consumers.CreateEdgeOperation, 7, 8),
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(store.Contains(entities.NewEdge(7, 8))).To(BeTrue())
		Expect(store.Edges()).To(HaveLen(2))
	})

	It("should apply commands for zero and negative node ids", func() {
		// ARRANGE
		Expect(store.CreateEdge(ctx, entities.NewEdge(-5, 0))).To(Succeed())

		// ACT
		err := consumer.HandleMessages(ctx, []kafka.Message{
			commandMessage(consumers.CreateEdgeOperation, 0, 1),
			commandMessage(consumers.DeleteEdgeOperation, -5, 0),
		})

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Contains(entities.NewEdge(0, 1))).To(BeTrue())
		Expect(store.Contains(entities.NewEdge(-5, 0))).To(BeFalse())
	})

	It("should discard a command without from_id", func() {
		err := consumer.HandleMessages(ctx, []kafka.Message{
			{Key: "missing", Value: []byte(`{"command_id":"c2","operation":"delete","to_id":2}`)},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(store.Edges()).To(Equal([]entities.Edge{{FromID: 1, ToID: 2}}))
	})

	It("should stop the batch on infrastructure errors", func() {
		// ARRANGE
		writeErr := errors.New("connection refused")
		writer := failingWriter{EdgeStore: store, err: writeErr}
		consumer = consumers.NewEdgeCommandsConsumer(logger, supplychain.NewTreeService(logger, store, writer, 0))

		// ACT
		err := consumer.HandleMessages(ctx, []kafka.Message{
			commandMessage(consumers.DeleteEdgeOperation, 1, 2),
			commandMessage(consumers.CreateEdgeOperation, 9, 10),
			commandMessage(consumers.DeleteEdgeOperation, 9, 10),
		})

		// ASSERT
		Expect(err).To(MatchError(writeErr))
		Expect(store.Edges()).To(BeEmpty())
	})
})
