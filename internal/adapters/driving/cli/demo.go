package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// sampleDoc is one built-in demo document.
type sampleDoc struct {
	filename string
	text     string
}

var sampleDocs = []sampleDoc{
	{
		filename: "climate_change.txt",
		text: `Climate change refers to long-term shifts in temperatures and weather patterns.
Since the 1800s, human activities have been the main driver of climate change,
primarily due to burning fossil fuels like coal, oil and gas. This produces
heat-trapping gases. The effects include rising sea levels, more intense storms,
droughts, and heatwaves. The Paris Agreement of 2015 committed nations to limit
global warming to 1.5°C above pre-industrial levels. Renewable energy sources
such as solar and wind power are central to reducing carbon emissions.
Electric vehicles, energy-efficient buildings, and reforestation are also key
strategies in the fight against climate change.`,
	},
	{
		filename: "machine_learning.txt",
		text: `Machine learning (ML) is a subset of artificial intelligence that enables systems
to learn and improve from experience without being explicitly programmed.
Supervised learning uses labelled data to train models for classification and
regression tasks. Unsupervised learning finds hidden patterns in unlabelled data.
Reinforcement learning trains agents through rewards and penalties.
Deep learning, a subset of ML, uses neural networks with many layers to learn
representations from large datasets. Applications include image recognition,
natural language processing, recommendation systems, and autonomous vehicles.
Popular frameworks include TensorFlow, PyTorch, and scikit-learn.`,
	},
	{
		filename: "space_exploration.txt",
		text: `Space exploration began in earnest with the Soviet Union's Sputnik 1 satellite
in 1957. NASA's Apollo program landed humans on the Moon in 1969. The International
Space Station, a collaboration between NASA, ESA, Roscosmos, JAXA, and CSA,
has been continuously inhabited since 2000. SpaceX revolutionised the industry
with reusable rockets like the Falcon 9 and plans for Mars colonisation via
the Starship programme. The James Webb Space Telescope, launched in 2021, provides
unprecedented views of the early universe. Artemis missions aim to return humans
to the Moon by 2026 as a stepping stone to Mars.`,
	},
}

var demoQuestions = []string{
	"What caused climate change?",
	"How does supervised learning work?",
	"When did humans first land on the Moon?",
	"What is the Paris Agreement?",
	"What frameworks are used in deep learning?",
}

var demoQuestion string

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Ingest sample documents and run example questions",
	Long: `Ingests three built-in sample documents and runs a set of example
questions against them, printing answers with their sources.`,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().StringVarP(&demoQuestion, "question", "q", "", "ask a custom question instead of the defaults")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, _ []string) error {
	divider := strings.Repeat("═", 60)
	cmd.Println()
	cmd.Println(divider)
	cmd.Println("  DocuMind RAG Demo")
	cmd.Println(divider)

	cmd.Println("\n[1/3] Initialising pipeline …")
	retrieval, err := application.Retrieval(cmd.Context())
	if err != nil {
		return err
	}
	qa, err := application.QA(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Println("\n[2/3] Ingesting sample documents …")
	for _, doc := range sampleDocs {
		result, err := retrieval.Ingest(cmd.Context(), doc.text, doc.filename)
		if err != nil {
			return err
		}
		cmd.Printf("  ✓ %s  (%d chunks, doc_id=%s)\n",
			result.Filename, result.NumChunks, result.DocID)
	}

	questions := demoQuestions
	if demoQuestion != "" {
		questions = []string{demoQuestion}
	}
	cmd.Printf("\n[3/3] Running %d Q&A queries …\n\n", len(questions))

	for _, q := range questions {
		cmd.Println(strings.Repeat("─", 60))
		cmd.Printf("Q: %s\n", q)

		result, err := qa.Ask(cmd.Context(), q, 3)
		if err != nil {
			return err
		}

		cmd.Printf("A: %s\n", result.Answer)
		cmd.Printf("\nMode: %s\n", result.Mode)
		cmd.Println("Sources:")
		for _, s := range result.Sources {
			cmd.Printf("  • %s  (sim=%v)  %s\n", s.Filename, s.Similarity, snippet(s.Excerpt, 80))
		}
		cmd.Println()
	}

	cmd.Println(divider)
	cmd.Println("  Demo complete!")
	cmd.Println(divider)
	cmd.Println()
	return nil
}
