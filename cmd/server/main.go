/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the billing engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load rates and coverage policy (YAML file, optional)
  3. Initialize SQLite store
  4. Build the engine and API handler
  5. Start the overdue scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port           HTTP server port (default: 8080)
  -db             SQLite database path (default: billing.db)
                  Use ":memory:" for in-memory database
  -rates          YAML config with charge rates and coverage policy
                  (default: $BILLING_CONFIG, else built-in rates)
  -scan-interval  Overdue scan interval (default: 1h, 0 disables)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the overdue scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/billing.db"

  # Run with custom rates
  ./server -rates=./billing.yaml

  # Run in memory without the background scan
  ./server -db=":memory:" -scan-interval=0

SEE ALSO:
  - config/config.go: rates file format
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
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

	"github.com/warp/billing-engine/api"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/config"
	"github.com/warp/billing-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "billing.db", "SQLite database path")
	ratesPath := flag.String("rates", "", "YAML file with charge rates and coverage policy")
	scanInterval := flag.Duration("scan-interval", time.Hour, "Overdue scan interval (0 disables)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*ratesPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Rates: amenities=%s security=%s maintenance=%s coverage=%s",
		cfg.Rates.Amenities.StringFixed(2), cfg.Rates.Security.StringFixed(2),
		cfg.Rates.Maintenance.StringFixed(2), cfg.Coverage)

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize engine and handler
	engine := billing.NewEngine(cfg.Rates, cfg.Coverage)
	handler := api.NewHandler(store, engine, api.NewMetrics())

	// Start overdue scheduler
	scheduler := api.NewOverdueScheduler(handler.Reconciler, handler.Metrics)
	scheduler.CheckInterval = *scanInterval
	scheduler.Start()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api, metrics at /metrics", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
