package cli

import (
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Download, chunk, embed and index every PDF in the container",
	RunE:  runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	svc, err := buildService(cfg)
	if err != nil {
		return err
	}
	report, err := svc.Ingest(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("Ingest %s complete: %d documents, %d pages, %d chunks indexed\n",
		report.RunID, report.Documents, report.Pages, report.Chunks)
	return nil
}
