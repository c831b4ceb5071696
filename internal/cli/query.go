package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var queryTopK int

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a question from the indexed documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (defaults to config top_k)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	svc, err := buildService(cfg)
	if err != nil {
		return err
	}
	topK := queryTopK
	if topK == 0 {
		topK = cfg.TopK
	}

	answer, err := svc.Ask(cmd.Context(), question, topK)
	if err != nil {
		return err
	}

	cmd.Printf("Question: %s\n\n", question)
	cmd.Println("Answer:")
	cmd.Println(answer.Text)
	if len(answer.Sources) == 0 {
		return nil
	}
	cmd.Println("\nSources:")
	for i, src := range answer.Sources {
		cmd.Printf("  %d. %s (Page %d) relevance %.3f\n", i+1, src.Record.SourceID, src.Record.Page, src.Score)
		cmd.Printf("     Chunk ID: %s\n", src.Record.ID)
	}
	return nil
}
