package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the JSON HTTP API exposing ingestion, search and question
answering. The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := serveAddr
	if addr == "" {
		addr = application.Config().Server.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Fail fast on misconfiguration instead of on the first request.
	if _, err := application.Handles(ctx); err != nil {
		return err
	}

	server := httpapi.NewServer(application)
	cmd.Printf("DocuMind API listening on %s\n", addr)
	return server.Run(ctx, addr)
}
