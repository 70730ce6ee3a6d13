// Package main runs the swap broker service: the REST API for preparing
// unsigned swap proposals and submitting their signed counterparts, the
// relay to the Solana network, and the confirmation tracker.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"solana-swap-broker/internal/confirm"
	"solana-swap-broker/internal/httpapi"
	"solana-swap-broker/internal/orders"
	"solana-swap-broker/internal/routing"
	"solana-swap-broker/internal/solana"
	"solana-swap-broker/internal/storage"
	chstore "solana-swap-broker/internal/storage/clickhouse"
	"solana-swap-broker/internal/storage/memory"
	"solana-swap-broker/internal/storage/migrations"
	pgstore "solana-swap-broker/internal/storage/postgres"
)

// brokerStores holds the storage implementations behind the service.
type brokerStores struct {
	orders storage.OrderStore
	events storage.OrderEventStore // nil when no audit trail is configured
}

func main() {
	// Load .env file if exists; system env vars win.
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (empty disables confirmation tracking)")
	routingEndpoint := flag.String("routing-endpoint", os.Getenv("ROUTING_ENDPOINT"), "Swap routing provider base URL")
	treasuryAddr := flag.String("treasury", os.Getenv("TREASURY_ADDRESS"), "Treasury account for platform fees (base58)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (empty disables the audit trail)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	migrate := flag.Bool("migrate", true, "Run database migrations on startup")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *routingEndpoint == "" {
		logger.Fatal("--routing-endpoint is required")
	}
	if *treasuryAddr == "" {
		logger.Fatal("--treasury is required")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	treasury, err := solana.ParsePublicKey(*treasuryAddr)
	if err != nil {
		logger.Fatalf("Invalid treasury address: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, *migrate, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Network clients
	rpc := solana.NewHTTPClient(*rpcEndpoint)

	var tracker *confirm.Tracker
	if *wsEndpoint != "" {
		ws, err := solana.NewWSClient(ctx, *wsEndpoint, nil)
		if err != nil {
			logger.Fatalf("Failed to connect websocket: %v", err)
		}
		defer ws.Close()

		tracker = confirm.NewTracker(confirm.Config{
			WS:     ws,
			Events: stores.events,
			Logger: log.New(os.Stdout, "[confirm] ", log.LstdFlags),
		})
	} else {
		logger.Println("No websocket endpoint configured, confirmation tracking disabled")
	}

	// Routing provider
	provider := routing.NewHTTPProvider(*routingEndpoint)

	// Order service
	opts := orders.Options{
		Store:    stores.orders,
		Network:  rpc,
		Routing:  provider,
		Events:   stores.events,
		Treasury: treasury,
		Logger:   log.New(os.Stdout, "[orders] ", log.LstdFlags),
	}
	if tracker != nil {
		opts.Tracker = tracker
	}
	service := orders.New(opts)

	// HTTP server
	api := httpapi.NewServer(service, rpc, log.New(os.Stdout, "[api] ", log.LstdFlags))
	httpServer := &http.Server{
		Addr:         *listenAddr,
		Handler:      api.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Listening on %s", *listenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-errCh:
		logger.Fatalf("HTTP server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP shutdown: %v", err)
	}
	if tracker != nil {
		// Let in-flight confirmation trackers drain.
		waitDone := make(chan struct{})
		go func() {
			tracker.Wait()
			close(waitDone)
		}()
		select {
		case <-waitDone:
		case <-shutdownCtx.Done():
			logger.Println("Confirmation trackers still in flight, exiting anyway")
		}
	}
	cancel()

	logger.Println("Shutdown complete")
}

// createStores creates the order store and, when configured, the audit trail.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory, migrate bool, logger *log.Logger) (*brokerStores, func(), error) {
	if useMemory {
		stores := &brokerStores{
			orders: memory.NewOrderStore(),
			events: memory.NewOrderEventStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
		}
	}

	stores := &brokerStores{orders: pgstore.NewOrderStore(pool)}
	cleanup := func() { pool.Close() }

	if clickhouseDSN == "" {
		logger.Println("No ClickHouse DSN configured, audit trail disabled")
		return stores, cleanup, nil
	}

	chConn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if migrate {
		if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
			chConn.Close()
			pool.Close()
			return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
		}
	}

	stores.events = chstore.NewOrderEventStore(chConn)
	cleanup = func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
