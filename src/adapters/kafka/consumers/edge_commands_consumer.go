package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"supplychaintree/src/domain"
	"supplychaintree/src/infra/kafka"
)

type EdgeOperation string

const (
	CreateEdgeOperation EdgeOperation = "create"
	DeleteEdgeOperation EdgeOperation = "delete"
)

// EdgeCommandMessage representa o schema da mensagem Kafka.
// Os ids são ponteiros para diferenciar campo ausente de id 0.
type EdgeCommandMessage struct {
	CommandID string        `json:"command_id"`
	Operation EdgeOperation `json:"operation"`
	FromID    *int64        `json:"from_id"`
	ToID      *int64        `json:"to_id"`
}

type EdgeCommandHandler interface {
	CreateEdge(ctx context.Context, fromNodeID int64, toNodeID int64) error
	DeleteEdge(ctx context.Context, fromNodeID int64, toNodeID int64) error
}

type EdgeCommandsConsumer struct {
	logger  *slog.Logger
	service EdgeCommandHandler
}

func NewEdgeCommandsConsumer(
	logger *slog.Logger,
	service EdgeCommandHandler,
) *EdgeCommandsConsumer {
	return &EdgeCommandsConsumer{
		logger:  logger,
		service: service,
	}
}

func (c *EdgeCommandsConsumer) Start(ctx context.Context, kafkaClient *kafka.KafkaClient, topic string) error {
	c.logger.Info("Starting edge commands consumer", "topic", topic)

	handler := func(messages []kafka.Message) error {
		return c.HandleMessages(ctx, messages)
	}

	return kafkaClient.Consumer(ctx, handler, topic)
}

// HandleMessages aplica os comandos na ordem do lote. Um lote reprocessado é
// idempotente: aresta duplicada no create e aresta ausente no delete são
// apenas logadas. Qualquer outro erro interrompe o lote sem confirmar offsets.
func (c *EdgeCommandsConsumer) HandleMessages(ctx context.Context, messages []kafka.Message) error {
	if len(messages) == 0 {
		return nil
	}

	c.logger.Info("Processing messages batch", "count", len(messages))

	applied, skipped := 0, 0
	for _, msg := range messages {
		var command EdgeCommandMessage
		if err := json.Unmarshal(msg.Value, &command); err != nil {
			c.logger.Error("Discarding malformed message",
				"error", err,
				"key", msg.Key,
				"value", string(msg.Value))
			skipped++
			continue
		}

		if command.FromID == nil || command.ToID == nil {
			c.logger.Error("Discarding invalid command: from_id and to_id are required",
				"command_id", command.CommandID,
				"key", msg.Key)
			skipped++
			continue
		}

		err := c.apply(ctx, command)
		switch {
		case err == nil:
			applied++
		case errors.Is(err, domain.ErrDuplicateEdge), errors.Is(err, domain.ErrEdgeNotFound):
			c.logger.Warn("Command already applied",
				"command_id", command.CommandID,
				"operation", command.Operation,
				"error", err)
			skipped++
		case errors.Is(err, domain.ErrInvalidArgument):
			c.logger.Error("Discarding invalid command", "command_id", command.CommandID, "error", err)
			skipped++
		default:
			c.logger.Error("Failed to apply edge command",
				"error", err,
				"command_id", command.CommandID,
				"operation", command.Operation)
			return fmt.Errorf("failed to apply command %s: %w", command.CommandID, err)
		}
	}

	c.logger.Info("Successfully processed messages batch",
		"count", len(messages),
		"applied", applied,
		"skipped", skipped)

	return nil
}

func (c *EdgeCommandsConsumer) apply(ctx context.Context, command EdgeCommandMessage) error {
	switch command.Operation {
	case CreateEdgeOperation:
		return c.service.CreateEdge(ctx, *command.FromID, *command.ToID)
	case DeleteEdgeOperation:
		return c.service.DeleteEdge(ctx, *command.FromID, *command.ToID)
	default:
		return fmt.Errorf("unknown operation %q: %w", command.Operation, domain.ErrInvalidArgument)
	}
}
