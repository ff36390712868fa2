package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var ingestFilename string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest text files into the knowledge base",
	Long: `Chunks each file into overlapping word windows, embeds the chunks and
stores them in the vector index. Only plain-text files are supported.
Re-ingesting a file replaces its previous chunks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFilename, "as", "", "override the stored filename (single file only)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestFilename != "" && len(args) > 1 {
		return fmt.Errorf("--as can only be used with a single file")
	}

	retrieval, err := application.Retrieval(cmd.Context())
	if err != nil {
		return err
	}

	for _, path := range args {
		if !strings.HasSuffix(path, ".txt") {
			return fmt.Errorf("only .txt files are supported: %s", path)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		filename := filepath.Base(path)
		if ingestFilename != "" {
			filename = ingestFilename
		}

		result, err := retrieval.Ingest(cmd.Context(), string(content), filename)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}

		cmd.Printf("Ingested %s (%d chunks, doc_id=%s)\n",
			result.Filename, result.NumChunks, result.DocID)
	}
	return nil
}
