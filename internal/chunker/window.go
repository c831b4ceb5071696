package chunker

import (
	"fmt"

	"healthrag/internal/domain"
)

// WindowChunker splits text into fixed-size overlapping character windows.
// Window size and overlap are counted in runes so multi-byte text never
// splits mid-character.
type WindowChunker struct {
	windowSize int
	overlap    int
}

// NewWindowChunker validates the window configuration. An overlap equal to
// or larger than the window would never advance the cursor.
func NewWindowChunker(windowSize, overlap int) (*WindowChunker, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: window size %d must be positive", domain.ErrInvalidConfiguration, windowSize)
	}
	if overlap < 0 || overlap >= windowSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", domain.ErrInvalidConfiguration, overlap, windowSize)
	}
	return &WindowChunker{windowSize: windowSize, overlap: overlap}, nil
}

// Chunk converts the document's text into an ordered sequence of windows.
// Each chunk spans [cursor, cursor+windowSize) capped at the end of text;
// consecutive chunks share overlap runes; the last chunk may be shorter.
// Empty text yields no chunks.
func (c *WindowChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	runes := []rune(document.Content)
	if len(runes) == 0 {
		return nil, nil
	}
	var chunks []domain.Chunk
	cursor := 0
	idx := 0
	for {
		end := cursor + c.windowSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, domain.Chunk{
			SourceID: document.Source,
			ChunkID:  fmt.Sprintf("%s-%d-%d", document.ID, document.Page, idx),
			Page:     document.Page,
			Index:    idx,
			Text:     string(runes[cursor:end]),
			Start:    cursor,
			End:      end,
		})
		if end == len(runes) {
			break
		}
		cursor += c.windowSize - c.overlap
		idx++
	}
	return chunks, nil
}
