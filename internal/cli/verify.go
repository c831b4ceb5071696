package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every configured collaborator is reachable",
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	failures := 0

	report := func(name string, err error) {
		if err != nil {
			cmd.Printf("  FAIL %s: %v\n", name, err)
			failures++
			return
		}
		cmd.Printf("  OK   %s\n", name)
	}

	cmd.Println("Checking collaborators:")
	report("blob storage", verifyBlob(ctx))
	report("vector store", verifyVectorStore())
	report("embedder", verifyEmbedder(ctx))
	report("answer generator", verifyGenerator())

	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	cmd.Println("All checks passed.")
	return nil
}

func verifyBlob(ctx context.Context) error {
	store, err := buildBlobStore(cfg)
	if err != nil {
		return err
	}
	names, err := store.ListPDFs(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("container %q is reachable but holds no PDFs", store.Container())
	}
	return nil
}

func verifyVectorStore() error {
	// Construction resolves the endpoint, key and index name from the
	// environment; the index itself is created on the first ingest.
	_, err := buildVectorStore(cfg)
	return err
}

func verifyEmbedder(ctx context.Context) error {
	emb, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	if emb.Name() == "tfidf" {
		// Local embedder, nothing remote to probe.
		return nil
	}
	vec, err := emb.Embed(ctx, "Hello, this is a test.")
	if err != nil {
		return err
	}
	if len(vec) == 0 {
		return fmt.Errorf("embedding deployment returned an empty vector")
	}
	return nil
}

func verifyGenerator() error {
	// Constructing the client validates the endpoint and key env vars; a
	// live completion call is left to the first real query.
	_, err := buildGenerator(cfg)
	return err
}
