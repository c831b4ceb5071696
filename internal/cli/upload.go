package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var uploadDir string

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload local PDFs to the blob storage container",
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadDir, "dir", "docs", "folder containing the PDFs to upload")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	store, err := buildBlobStore(cfg)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(uploadDir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", uploadDir, err)
	}
	var pdfs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			pdfs = append(pdfs, e.Name())
		}
	}
	if len(pdfs) == 0 {
		return fmt.Errorf("no PDF files found in %s", uploadDir)
	}
	cmd.Printf("Uploading %d files to container %q\n", len(pdfs), store.Container())

	// A single bad file should not stop the rest of the batch.
	uploaded := 0
	for _, name := range pdfs {
		data, err := os.ReadFile(filepath.Join(uploadDir, name))
		if err != nil {
			cmd.PrintErrf("  FAIL %s: %v\n", name, err)
			continue
		}
		if err := store.Upload(cmd.Context(), name, data); err != nil {
			cmd.PrintErrf("  FAIL %s: %v\n", name, err)
			continue
		}
		cmd.Printf("  OK   %s (%.1f KB)\n", name, float64(len(data))/1024)
		uploaded++
	}

	cmd.Printf("Uploaded %d/%d files\n", uploaded, len(pdfs))
	if uploaded == 0 {
		return fmt.Errorf("no files were uploaded")
	}
	return nil
}
