package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	"supplychaintree/src/adapters/kafka/consumers"
	"supplychaintree/src/helper/env"
	"supplychaintree/src/infra/kafka"
	"supplychaintree/src/infra/postgres"
	"supplychaintree/src/repositories"
	"supplychaintree/src/services/events"
	"supplychaintree/src/services/supplychain"

	"go.uber.org/fx"
)

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting Edge Commands Consumer with Uber Fx...")

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newReadWriteClient,
			newKafkaClient,
			newTreeQueryRepository,
			newEdgeWriteRepository,
			newEdgeEventPublisher,
			newTreeService,
			newEdgeCommandsConsumer,
		),

		// Invocations
		fx.Invoke(startConsumer),
	)

	// Start the application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start consumer application: %v", err)
	}

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Shutting down edge commands consumer...")

	// Stop the application
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}

	log.Println("Edge commands consumer shutdown complete")
}

func newLogger() *slog.Logger {
	logLevel := env.GetString("LOG_LEVEL", "info")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func newReadWriteClient() (*postgres.ReadWriteClient, error) {
	dbReadHost := env.MustGetString("DB_READ_HOST")
	dbWriteHost := env.MustGetString("DB_WRITE_HOST")
	dbReadPort := env.GetString("DB_READ_PORT", "5432")
	dbWritePort := env.GetString("DB_WRITE_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 25)

	return postgres.NewReadWriteClient(dbReadHost, dbWriteHost, dbReadPort, dbWritePort, dbname, dbUser, dbPassword, maxConnections)
}

func newKafkaClient() (*kafka.KafkaClient, error) {
	brokers := env.MustGetString("KAFKA_BROKERS")
	groupID := env.MustGetString("KAFKA_EDGE_COMMANDS_GROUP_ID")
	batchSize := env.MustGetInt("KAFKA_BATCH_SIZE")

	return kafka.NewKafkaClient(brokers, groupID, batchSize)
}

func newTreeQueryRepository(readWriteClient *postgres.ReadWriteClient) *repositories.TreeQueryRepository {
	return repositories.NewTreeQueryRepository(readWriteClient.GetReadPool(), env.GetInt("TREE_MAX_DEPTH", repositories.DefaultMaxDepth))
}

func newEdgeWriteRepository(readWriteClient *postgres.ReadWriteClient) *repositories.EdgeWriteRepository {
	return repositories.NewEdgeWriteRepository(readWriteClient.GetWritePool())
}

func newEdgeEventPublisher(logger *slog.Logger, kafkaClient *kafka.KafkaClient) *events.EdgeEventPublisher {
	return events.NewEdgeEventPublisher(logger, kafkaClient, env.MustGetString("KAFKA_EDGE_EVENTS_TOPIC"))
}

func newTreeService(
	logger *slog.Logger,
	treeQueryRepository *repositories.TreeQueryRepository,
	edgeWriteRepository *repositories.EdgeWriteRepository,
	edgeEventPublisher *events.EdgeEventPublisher,
) *supplychain.TreeService {
	return supplychain.NewTreeService(logger, treeQueryRepository, edgeWriteRepository, env.GetInt("TREE_BATCH_SIZE", 0)).
		WithEventPublisher(edgeEventPublisher)
}

func newEdgeCommandsConsumer(
	logger *slog.Logger,
	treeService *supplychain.TreeService,
) *consumers.EdgeCommandsConsumer {
	return consumers.NewEdgeCommandsConsumer(logger, treeService)
}

func startConsumer(
	lc fx.Lifecycle,
	logger *slog.Logger,
	kafkaClient *kafka.KafkaClient,
	readWriteClient *postgres.ReadWriteClient,
	edgeCommandsConsumer *consumers.EdgeCommandsConsumer,
) {
	consumerCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			topic := env.MustGetString("KAFKA_EDGE_COMMANDS_TOPIC")
			logger.Info("Starting edge commands consumer", "topic", topic)

			// Start consumer in background
			go func() {
				if err := edgeCommandsConsumer.Start(consumerCtx, kafkaClient, topic); err != nil {
					logger.Error("Consumer failed", "error", err)
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()

			logger.Info("Shutting down Kafka client...")
			if err := kafkaClient.Close(); err != nil {
				logger.Error("Failed to close Kafka client", "error", err)
				return err
			}
			readWriteClient.Close()
			logger.Info("Kafka client shut down gracefully")
			return nil
		},
	})
}
