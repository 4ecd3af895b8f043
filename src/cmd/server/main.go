package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"
	api "supplychaintree/src/adapters/http"
	"supplychaintree/src/helper/env"
	"supplychaintree/src/infra/kafka"
	"supplychaintree/src/infra/postgres"
	"supplychaintree/src/infra/redis"
	"supplychaintree/src/repositories"
	"supplychaintree/src/services/events"
	"supplychaintree/src/services/supplychain"

	"go.uber.org/fx"
)

func main() {
	// Configurar logger
	log.SetOutput(os.Stdout)
	log.Println("Starting supply chain tree API with Uber Fx...")

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newReadWriteClient,
			newRedisClient,
			newKafkaClient,
			newTreeQueryRepository,
			newEdgeWriteRepository,
			newGenerationLockRepository,
			newEdgeEventPublisher,
			newTreeService,
			newServer,
		),

		// Invocations
		fx.Invoke(registerServerHooks),
	)

	// Start the application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wait for app to exit gracefully
	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}
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

func newRedisClient() *redis.RedisClient {
	redisHosts := env.MustGetString("REDIS_HOSTS")
	redisPoolSize := env.GetInt("REDIS_POOL_SIZE", 50)
	lockTTL := env.GetDuration("REDIS_GENERATION_LOCK_TTL_SECONDS", time.Second, 300)

	return redis.NewRedisClient(redisHosts, redisPoolSize, lockTTL)
}

// newKafkaClient cria apenas o producer: a API não consome tópicos.
func newKafkaClient() (*kafka.KafkaClient, error) {
	brokers := env.MustGetString("KAFKA_BROKERS")
	batchSize := env.GetInt("KAFKA_BATCH_SIZE", 100)

	return kafka.NewKafkaClient(brokers, "", batchSize)
}

func newTreeQueryRepository(readWriteClient *postgres.ReadWriteClient) *repositories.TreeQueryRepository {
	maxDepth := env.GetInt("TREE_MAX_DEPTH", repositories.DefaultMaxDepth)
	return repositories.NewTreeQueryRepository(readWriteClient.GetReadPool(), maxDepth)
}

func newEdgeWriteRepository(readWriteClient *postgres.ReadWriteClient) *repositories.EdgeWriteRepository {
	return repositories.NewEdgeWriteRepository(readWriteClient.GetWritePool())
}

func newGenerationLockRepository(redisClient *redis.RedisClient) *repositories.GenerationLockRepository {
	return repositories.NewGenerationLockRepository(redisClient)
}

func newEdgeEventPublisher(logger *slog.Logger, kafkaClient *kafka.KafkaClient) *events.EdgeEventPublisher {
	topic := env.MustGetString("KAFKA_EDGE_EVENTS_TOPIC")
	return events.NewEdgeEventPublisher(logger, kafkaClient, topic)
}

func newTreeService(
	logger *slog.Logger,
	treeQueryRepository *repositories.TreeQueryRepository,
	edgeWriteRepository *repositories.EdgeWriteRepository,
	generationLockRepository *repositories.GenerationLockRepository,
	edgeEventPublisher *events.EdgeEventPublisher,
) *supplychain.TreeService {
	batchSize := env.GetInt("TREE_BATCH_SIZE", 0)

	return supplychain.NewTreeService(logger, treeQueryRepository, edgeWriteRepository, batchSize).
		WithGenerationLocker(generationLockRepository).
		WithEventPublisher(edgeEventPublisher)
}

func newServer(
	logger *slog.Logger,
	readWriteClient *postgres.ReadWriteClient,
	redisClient *redis.RedisClient,
	treeService *supplychain.TreeService,
) *api.Server {

	port := 8080 // default value
	if portStr := os.Getenv("SERVER_ADDR"); portStr != "" {
		if val, err := strconv.Atoi(portStr); err == nil {
			port = val
		}
	}

	testAuth := api.BasicAuth{
		User:     env.GetString("TEST_API_USER"),
		Password: env.GetString("TEST_API_PASSWORD"),
	}
	if testAuth.User == "" {
		logger.Warn("TEST_API_USER not set, test endpoints are disabled")
	}

	server := api.NewServer(logger, port, treeService, testAuth).
		WithHealthCheck(func(ctx context.Context) error {
			return errors.Join(
				readWriteClient.GetReadPool().Ping(ctx),
				readWriteClient.GetWritePool().Ping(ctx),
				redisClient.HealthCheck(ctx),
			)
		})

	return server
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(
	lc fx.Lifecycle,
	srv *api.Server,
	readWriteClient *postgres.ReadWriteClient,
	redisClient *redis.RedisClient,
	kafkaClient *kafka.KafkaClient,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Start server in a separate goroutine
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Create timeout context for graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			log.Println("Shutting down server...")
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Server forced to shutdown: %v", err)
				return err
			}

			readWriteClient.Close()
			if err := errors.Join(redisClient.Close(), kafkaClient.Close()); err != nil {
				log.Printf("Failed to close clients: %v", err)
			}

			log.Println("Server exited gracefully")
			return nil
		},
	})
}
