//go:build datagen_postgres
// +build datagen_postgres

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
	"supplychaintree/src/domain"
	"supplychaintree/src/domain/tree"
	"supplychaintree/src/helper/env"
	"supplychaintree/src/infra/postgres"
	"supplychaintree/src/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

type treeJob struct {
	RootID int64
	Size   int
	Arity  *int
}

func newSQLClient(maxConnections int) (*pgxpool.Pool, error) {
	dbHost := env.MustGetString("DB_WRITE_HOST")
	dbPort := env.GetString("DB_WRITE_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	return postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
}

func main() {
	numTrees := flag.Int("trees", 10, "Número de árvores a serem criadas. Use -1 para infinito.")
	treeSize := flag.Int("size", 100_000, "Arestas por árvore")
	arityFlag := flag.Int("arity", 0, "Filhos por nó. 0 usa o padrão calculado pelo tamanho")
	batchSize := flag.Int("batch-size", tree.DefaultBatchSize, "Arestas por COPY")
	baseRoot := flag.Int64("base-root", 1, "Primeiro root; as árvores seguintes não se sobrepõem")
	numWorkers := flag.Int("workers", 8, "Conexões gravando em paralelo")
	flag.Parse()

	var arity *int
	if *arityFlag > 0 {
		arity = arityFlag
	}

	// valida size/arity antes de abrir conexões
	if _, err := tree.Generate(*baseRoot, *treeSize, arity); err != nil {
		log.Fatalf("Invalid tree shape: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := newSQLClient(*numWorkers + 2)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	edgeWriteRepository := repositories.NewEdgeWriteRepository(db)

	jobs := make(chan treeJob, *numWorkers*2)

	var wg sync.WaitGroup
	var totalEdges, totalTrees, totalErrors int64
	startTime := time.Now()

	// Métricas a cada 2 segundos
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				edges := atomic.LoadInt64(&totalEdges)
				elapsed := time.Since(startTime)
				fmt.Printf("📊 Trees: %d | Edges: %d | Errors: %d | Rate: %.1f edges/s | Elapsed: %v\n",
					atomic.LoadInt64(&totalTrees), edges, atomic.LoadInt64(&totalErrors),
					float64(edges)/elapsed.Seconds(), elapsed.Round(time.Second))
			}
		}
	}()

	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go worker(ctx, &wg, edgeWriteRepository, jobs, *batchSize, i+1, &totalEdges, &totalTrees, &totalErrors)
	}

	wg.Add(1)
	go producer(ctx, &wg, jobs, *numTrees, *baseRoot, *treeSize, arity)

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n🛑 Shutdown signal received, stopping...")
		cancel()
	}()

	wg.Wait()

	elapsed := time.Since(startTime)
	edges := atomic.LoadInt64(&totalEdges)

	fmt.Printf("\n🏁 Seeding finished!\n")
	fmt.Printf("🌳 Total trees: %d\n", atomic.LoadInt64(&totalTrees))
	fmt.Printf("📊 Total edges: %d\n", edges)
	fmt.Printf("❌ Total errors: %d\n", atomic.LoadInt64(&totalErrors))
	fmt.Printf("⏱️  Total time: %v\n", elapsed.Round(time.Second))
	fmt.Printf("🚀 Average rate: %.1f edges/s\n", float64(edges)/elapsed.Seconds())
}

// producer distribui roots espaçados por size+1: a árvore de root r usa os ids r..r+size.
func producer(ctx context.Context, wg *sync.WaitGroup, jobs chan<- treeJob, numTrees int, baseRoot int64, size int, arity *int) {
	defer wg.Done()
	defer close(jobs)

	isInfinite := numTrees == -1
	for i := 0; isInfinite || i < numTrees; i++ {
		job := treeJob{
			RootID: baseRoot + int64(i)*int64(size+1),
			Size:   size,
			Arity:  arity,
		}

		select {
		case jobs <- job:
		case <-ctx.Done():
			fmt.Println("Producer stopping.")
			return
		}
	}
}

func worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	edgeWriteRepository *repositories.EdgeWriteRepository,
	jobs <-chan treeJob,
	batchSize int,
	workerID int,
	totalEdges, totalTrees, totalErrors *int64,
) {
	defer wg.Done()

	for job := range jobs {
		generator, err := tree.Generate(job.RootID, job.Size, job.Arity)
		if err != nil {
			log.Printf("Worker %d: invalid tree %d: %v", workerID, job.RootID, err)
			atomic.AddInt64(totalErrors, 1)
			continue
		}

		persisted, err := edgeWriteRepository.CreateEdges(ctx, generator, batchSize)
		atomic.AddInt64(totalEdges, persisted)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			if errors.Is(err, domain.ErrEdgeConflict) {
				log.Printf("Worker %d: tree %d already loaded, skipping", workerID, job.RootID)
			} else {
				log.Printf("Worker %d: tree %d failed after %d edges: %v", workerID, job.RootID, persisted, err)
			}
			atomic.AddInt64(totalErrors, 1)
			continue
		}

		atomic.AddInt64(totalTrees, 1)
	}
}
