package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// SignalHandler manages graceful shutdown of the HTTP server and its
// background services
type SignalHandler struct {
	server          *http.Server
	shutdownTimeout time.Duration
	cleanups        []func()
}

// NewSignalHandler creates a new signal handler. Cleanup functions run in
// order after the HTTP server has drained, for stopping workers and closing
// stores.
func NewSignalHandler(server *http.Server, shutdownTimeout time.Duration, cleanups ...func()) *SignalHandler {
	return &SignalHandler{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		cleanups:        cleanups,
	}
}

// WaitForShutdown waits for shutdown signals and handles graceful shutdown
func (sh *SignalHandler) WaitForShutdown() {
	quit := make(chan os.Signal, 1)

	// SIGINT - typically sent by Ctrl+C
	// SIGTERM - standard termination signal sent by process managers
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("Received signal: %v", sig)
	log.Println("Initiating graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), sh.shutdownTimeout)
	defer cancel()

	if err := sh.server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown due to timeout: %v", err)
	} else {
		log.Println("Server gracefully shut down")
	}

	for _, cleanup := range sh.cleanups {
		cleanup()
	}
}

// HandleSignals is a convenience function that combines server start and
// signal handling
func HandleSignals(server *http.Server, shutdownTimeout time.Duration, cleanups ...func()) error {
	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	handler := NewSignalHandler(server, shutdownTimeout, cleanups...)
	handler.WaitForShutdown()

	return nil
}
