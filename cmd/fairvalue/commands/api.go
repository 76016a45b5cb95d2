package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fairvalue/internal/api"
	"github.com/wonny/fairvalue/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Start the HTTP API server.

Endpoints:
  GET  /health                     - Health check
  GET  /api/valuation/{symbol}     - Full valuation snapshot for one ticker
  GET  /api/search?q=              - Symbol search
  POST /api/batch/score            - Score a symbol list or watchlist
  GET  /api/batch/stream           - Batch scoring with websocket progress
  GET  /api/batch/runs             - Persisted run history (needs DATABASE_URL)

Example:
  go run ./cmd/fairvalue api
  go run ./cmd/fairvalue api --port 8087`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Build the application stack
	s, cleanup, err := buildStack()
	if err != nil {
		return err
	}
	defer cleanup()

	if apiPort != "" {
		s.cfg.Port = apiPort
	}

	// 2. Attach run persistence when configured
	closeDB, err := s.withStore()
	if err != nil {
		return err
	}
	defer closeDB()

	if s.store != nil {
		if err := s.store.EnsureSchema(cmd.Context()); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	// 3. Resolve the default weighting profile
	prof, err := resolveProfile()
	if err != nil {
		return err
	}

	// 4. Create handlers
	valuationHandler := handlers.NewValuationHandler(s.assembler, prof, s.log)
	searchHandler := handlers.NewSearchHandler(s.provider, s.log)
	batchHandler := handlers.NewBatchHandler(s.scorer, s.httpClient, s.store, prof, s.log)
	runsHandler := handlers.NewRunsHandler(s.store, s.log)

	// 5. Create router and server
	router := api.NewRouter(valuationHandler, searchHandler, batchHandler, runsHandler, s.log)
	server := api.New(s.cfg, s.log, router)

	// 6. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			s.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", s.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
