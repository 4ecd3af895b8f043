//go:build datagen_kafka_edge_commands
// +build datagen_kafka_edge_commands

package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	"supplychaintree/src/adapters/kafka/consumers"
	"supplychaintree/src/domain/entities"
	"supplychaintree/src/domain/tree"
	"supplychaintree/src/infra/kafka"

	"github.com/go-faker/faker/v4"
)

// newCommand cria o comando com id único; a chave é o nó de origem para manter a ordem por pai.
func newCommand(operation consumers.EdgeOperation, edge entities.Edge) (kafka.Message, error) {
	command := consumers.EdgeCommandMessage{
		CommandID: faker.UUIDHyphenated(),
		Operation: operation,
		FromID:    &edge.FromID,
		ToID:      &edge.ToID,
	}

	value, err := json.Marshal(command)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   strconv.FormatInt(edge.FromID, 10),
		Value: value,
		Headers: map[string]string{
			"command_id": command.CommandID,
		},
	}, nil
}

func main() {
	totalTrees := flag.Int("trees", 10, "Total number of trees to emit. Use -1 for infinite.")
	treeSize := flag.Int("size", 1000, "Edges per tree")
	baseRoot := flag.Int64("base-root", 1_000_000_000, "First root id; following trees never overlap")
	deletePerc := flag.Float64("delete-perc", 5.0, "Percentage of emitted edges followed by a delete command")
	batchSize := flag.Int("batch-size", 100, "Number of messages per batch")
	topic := flag.String("topic", "", "Kafka topic to send messages to (required)")
	brokers := flag.String("brokers", "", "Kafka brokers (comma-separated) (required)")
	delayMs := flag.Int("delay-ms", 100, "Delay in milliseconds between batches")
	flag.Parse()

	// Validate required flags
	if *topic == "" {
		log.Fatal("The 'topic' flag is required")
	}
	if *brokers == "" {
		log.Fatal("The 'brokers' flag is required")
	}

	kafkaClient, err := kafka.NewKafkaClient(*brokers, "", *batchSize)
	if err != nil {
		log.Fatalf("Failed to create Kafka client: %v", err)
	}
	defer kafkaClient.Close()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal, stopping...")
		cancel()
	}()

	isInfinite := *totalTrees == -1
	messagesSent := 0
	startTime := time.Now()

	for i := 0; isInfinite || i < *totalTrees; i++ {
		rootID := *baseRoot + int64(i)*int64(*treeSize+1)
		generator, err := tree.Generate(rootID, *treeSize, nil)
		if err != nil {
			log.Fatalf("Invalid tree shape: %v", err)
		}

		for batch, err := range tree.Batches(generator, *batchSize) {
			if err != nil {
				log.Fatalf("Failed to generate edges: %v", err)
			}

			select {
			case <-ctx.Done():
				log.Printf("Shutdown requested, stopping after %d messages", messagesSent)
				return
			default:
			}

			messages := make([]kafka.Message, 0, len(batch))
			for _, edge := range batch {
				created, err := newCommand(consumers.CreateEdgeOperation, edge)
				if err != nil {
					log.Printf("Failed to marshal message: %v", err)
					continue
				}
				messages = append(messages, created)

				if rand.Float64()*100 < *deletePerc {
					deleted, err := newCommand(consumers.DeleteEdgeOperation, edge)
					if err != nil {
						log.Printf("Failed to marshal message: %v", err)
						continue
					}
					messages = append(messages, deleted)
				}
			}

			if err := kafkaClient.Producer(messages, *topic); err != nil {
				log.Printf("Failed to send batch: %v", err)
				continue
			}
			messagesSent += len(messages)

			if *delayMs > 0 {
				time.Sleep(time.Duration(*delayMs) * time.Millisecond)
			}
		}

		elapsed := time.Since(startTime)
		log.Printf("Tree %d emitted, %d messages sent (%.1f msg/sec)", rootID, messagesSent, float64(messagesSent)/elapsed.Seconds())
	}

	elapsed := time.Since(startTime)
	log.Printf("✅ Completed! Sent %d messages in %v (%.1f msg/sec)", messagesSent, elapsed, float64(messagesSent)/elapsed.Seconds())
}
