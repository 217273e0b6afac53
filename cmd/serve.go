package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clauselens/clauselens/internal/db"
	"github.com/clauselens/clauselens/internal/server"
	"github.com/clauselens/clauselens/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket API server",
	Long: `Starts the HTTP server. Clients create sessions, upload documents and
ask questions over REST or the WebSocket chat endpoint. Conversations
are persisted in the data directory.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides config)")
	serveCmd.Flags().Bool("allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = cfg.Port
	}
	allowAll, _ := cmd.Flags().GetBool("allow-all-origins")

	opts, err := sessionOptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	store, err := db.Open(dbPath(cfg))
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer store.Close()

	srv := server.New(server.Config{Port: port, AllowAll: allowAll}, session.NewManager(opts), store)

	// Graceful shutdown on SIGINT/SIGTERM.
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		fmt.Fprintf(os.Stderr, "received %v, shutting down\n", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
