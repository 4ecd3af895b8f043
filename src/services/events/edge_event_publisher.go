package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"supplychaintree/src/domain"
	"supplychaintree/src/infra/kafka"

	"github.com/google/uuid"
)

const (
	sourceService = "supply-chain-tree-api"
	schemaVersion = "v1"
)

type EdgeEventPublisher struct {
	logger      *slog.Logger
	kafkaClient *kafka.KafkaClient
	topic       string
}

func NewEdgeEventPublisher(
	logger *slog.Logger,
	kafkaClient *kafka.KafkaClient,
	topic string,
) *EdgeEventPublisher {
	return &EdgeEventPublisher{
		logger:      logger,
		kafkaClient: kafkaClient,
		topic:       topic,
	}
}

type edgeEventMessage struct {
	EventID string `json:"event_id"`
	domain.EdgeEvent
}

// PublishEdgeEvents publica os eventos em um único lote, particionados pelo nó de origem.
func (p *EdgeEventPublisher) PublishEdgeEvents(ctx context.Context, events ...domain.EdgeEvent) error {
	if len(events) == 0 {
		return nil
	}

	kafkaMessages := make([]kafka.Message, 0, len(events))

	for _, event := range events {
		message := edgeEventMessage{EventID: uuid.NewString(), EdgeEvent: event}

		eventBytes, err := json.Marshal(message)
		if err != nil {
			return fmt.Errorf("EdgeEventPublisher.PublishEdgeEvents - failed to marshal %s event: %w", event.Type, err)
		}

		kafkaMessages = append(kafkaMessages, kafka.Message{
			Key:     p.partitionKey(event),
			Value:   eventBytes,
			Headers: p.createEventHeaders(message),
		})
	}

	if err := p.kafkaClient.Producer(kafkaMessages, p.topic); err != nil {
		return fmt.Errorf("EdgeEventPublisher.PublishEdgeEvents - failed to publish to topic %s: %w", p.topic, err)
	}

	p.logger.Debug("Published edge events", "topic", p.topic, "events_count", len(kafkaMessages))

	return nil
}

func (p *EdgeEventPublisher) partitionKey(event domain.EdgeEvent) string {
	if event.Type == domain.TreeGenerated {
		return strconv.FormatInt(event.RootID, 10)
	}
	return strconv.FormatInt(event.FromID, 10)
}

// createEventHeaders permite filtrar eventos sem desserializar o payload
func (p *EdgeEventPublisher) createEventHeaders(message edgeEventMessage) map[string]string {
	return map[string]string{
		"event_type":     string(message.Type),
		"event_id":       message.EventID,
		"source_service": sourceService,
		"schema_version": schemaVersion,
	}
}
