package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var askTopK int

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question over the ingested documents",
	Long: `Retrieves the most relevant chunks for the question and answers from
them. With an LLM configured the answer is generated; without one the best
matching chunk is returned verbatim.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve as context (0 uses the configured default)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	qa, err := application.QA(cmd.Context())
	if err != nil {
		return err
	}

	result, err := qa.Ask(cmd.Context(), question, askTopK)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Printf("Q: %s\n", result.Question)
	cmd.Printf("A: %s\n", result.Answer)
	cmd.Printf("\nMode: %s\n", result.Mode)

	if len(result.Sources) > 0 {
		cmd.Println("Sources:")
		for _, s := range result.Sources {
			cmd.Printf("  • %s  (sim=%v)  %s\n", s.Filename, s.Similarity, snippet(s.Excerpt, 80))
		}
	}
	return nil
}
