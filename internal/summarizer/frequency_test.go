package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_PicksAtMostMaxSentences(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "Blood pressure matters. Blood pressure should be monitored. Diet affects blood pressure. Cats are fluffy. Exercise helps blood pressure."

	summary, err := s.Summarize(text, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
	assert.LessOrEqual(t, strings.Count(summary, "."), 2)
	assert.Contains(t, strings.ToLower(summary), "blood pressure")
}

func TestSummarize_ShortTextReturnedWhole(t *testing.T) {
	s := NewFrequencySummarizer()
	summary, err := s.Summarize("no sentence terminators here", 5)
	require.NoError(t, err)
	assert.Equal(t, "no sentence terminators here", summary)
}

func TestSummarize_PreservesOriginalOrder(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "Alpha topic sentence one. Filler filler filler. Alpha topic sentence two."

	summary, err := s.Summarize(text, 2)
	require.NoError(t, err)
	one := strings.Index(summary, "one")
	two := strings.Index(summary, "two")
	if one >= 0 && two >= 0 {
		assert.Less(t, one, two)
	}
}
