// Package extract turns raw document bytes into per-page text documents.
package extract

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"healthrag/internal/domain"
)

// Documents extracts text from the named file's content. PDFs produce one
// Document per non-empty page; anything else is treated as plain text and
// becomes a single page-1 Document. The document ID is derived from the
// source name so re-indexing the same file is idempotent.
func Documents(name string, data []byte) ([]domain.Document, error) {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return pdfDocuments(name, data)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}
	return []domain.Document{{
		ID:      docID(name),
		Source:  name,
		Page:    1,
		Content: text,
	}}, nil
}

func pdfDocuments(name string, data []byte) ([]domain.Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("reading pdf %s: %w", name, err)
	}
	id := docID(name)
	var docs []domain.Document
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d of %s: %w", i, name, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		docs = append(docs, domain.Document{
			ID:      id,
			Source:  name,
			Page:    i,
			Content: text,
		})
	}
	return docs, nil
}

func docID(name string) string {
	h := sha1.Sum([]byte(name))
	return hex.EncodeToString(h[:8])
}
