// Package cli implements the documind command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/app"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/config"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/logger"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

var (
	configPath string
	verbose    bool

	// application is built once in the persistent pre-run and shared by
	// all subcommands. Gateways inside it are still lazy.
	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "documind",
	Short: "RAG-powered document Q&A",
	Long: `DocuMind ingests plain-text documents into a vector index and answers
questions about them, grounded in the retrieved content.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)

		var (
			cfg  *config.Config
			path string
			err  error
		)
		if configPath != "" {
			path = configPath
			cfg, err = config.Load(configPath)
		} else {
			cfg, path, err = config.LoadDefault()
		}
		if err != nil {
			return err
		}
		logger.Debug("Loaded configuration from %s", path)

		application = app.New(cfg)
		return nil
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if application != nil {
			return application.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
