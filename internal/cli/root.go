// Package cli wires the configuration into pipeline components and exposes
// the upload / index / query / chat / verify subcommands.
package cli

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"healthrag/internal/config"
)

var (
	cfgPath string
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "healthrag",
	Short: "Teaching-lab RAG pipeline over Azure Blob Storage, AI Search and OpenAI",
	Long: `healthrag wires three managed services into a minimal
retrieval-augmented-generation demo: PDFs are uploaded to blob storage,
split into overlapping text windows, embedded and stored in a vector index,
and questions are answered from the retrieved chunks.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		var err error
		if cfgPath == "" {
			cfg, _, err = config.LoadDefault()
		} else {
			cfg, err = config.Load(cfgPath)
		}
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (defaults to ./config.yaml, then ~/.config/healthrag/config.yaml)")
}

// ExecuteContext runs the root command; the context cancels long-running
// subcommands on interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
