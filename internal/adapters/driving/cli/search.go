package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/domain"
)

var (
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Semantic search over ingested documents",
	Long: `Embeds the query and returns the closest chunks from the vector index,
ordered by descending cosine similarity.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "maximum number of results (0 uses the configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	retrieval, err := application.Retrieval(cmd.Context())
	if err != nil {
		return err
	}

	results, err := retrieval.Search(cmd.Context(), query, searchTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	payload := make([]map[string]any, len(results))
	for i, r := range results {
		payload[i] = map[string]any{
			"chunk_id":   r.ChunkID,
			"filename":   r.Filename,
			"similarity": r.Similarity,
			"text":       r.Text,
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, r.Filename, r.Similarity)
		cmd.Printf("      %s\n", snippet(r.Text, 120))
		cmd.Println()
	}
	return nil
}

// snippet truncates text to at most n runes for table output.
func snippet(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "…"
}
