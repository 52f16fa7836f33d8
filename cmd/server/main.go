package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/stepscope/backend/internal/infrastructure/config"
	"github.com/stepscope/backend/internal/infrastructure/server"
	"github.com/stepscope/backend/internal/sandbox"
)

func main() {
	// Parse flags
	worker := flag.Bool("worker", false, "Run as a sandbox worker: read code from stdin, write the trace to stdout")
	port := flag.String("port", "", "Server port (overrides PORT)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}

	if *worker {
		runWorker(cfg)
		return
	}

	// Create server
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		log.Println("Shutting down gracefully...")
		if err := srv.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}

// runWorker executes one guest program in this process and exits. The parent
// supervisor owns the wall-clock budget and kills us if we outlive it.
func runWorker(cfg *config.Config) {
	err := sandbox.RunWorker(os.Stdin, os.Stdout, sandbox.Config{
		MaxSteps:      cfg.Run.MaxSteps,
		Timeout:       cfg.Run.Timeout,
		MaxConcurrent: 1,
	})
	if err != nil {
		os.Exit(1)
	}
}
