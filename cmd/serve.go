package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/kozaktomas/face-engine/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the Face Engine HTTP server.
Pending database migrations are applied on startup. The server stops
accepting requests on SIGINT or SIGTERM and waits for running recognitions
and queued notifications before exiting.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := flagValue(cmd, "port", cmd.Flags().GetInt)
	host := flagValue(cmd, "host", cmd.Flags().GetString)

	if envPort := os.Getenv("WEB_PORT"); envPort != "" && !cmd.Flags().Changed("port") {
		if p, err := strconv.Atoi(envPort); err == nil {
			port = p
		}
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" && !cmd.Flags().Changed("host") {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	log := a.Log
	defer log.Sync()

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(a, port, host)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sig := <-sigChan
		log.Info("Shutting down", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during shutdown", zap.Error(err))
		}
		if err := a.Close(shutdownCtx); err != nil {
			log.Error("Error closing application", zap.Error(err))
		}
	}()

	log.Info("Face Engine ready",
		zap.String("url", fmt.Sprintf("http://%s:%d", host, port)),
		zap.Int("workers", a.Pool.Size()),
		zap.Int("queue", a.Pool.QueueSize()),
		zap.Bool("nx_witness", a.Notifier != nil),
	)

	if err := server.Start(); err != nil {
		a.Close(context.Background())
		return fmt.Errorf("starting server: %w", err)
	}
	<-shutdownDone
	return nil
}
