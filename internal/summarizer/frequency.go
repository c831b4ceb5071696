// Package summarizer produces extractive summaries. It backs the answer path
// when no chat deployment is configured: the retrieved chunks are condensed
// into their highest-signal sentences instead of a generated reply.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
	wordPattern     = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

// FrequencySummarizer scores sentences by the normalized frequency of their
// content words and keeps the top scorers in original order.
type FrequencySummarizer struct {
	stop map[string]struct{}
}

// NewFrequencySummarizer creates a frequency-based extractive summarizer.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{stop: summaryStopwords()}
}

// Summarize returns up to maxSentences of the input, chosen by word-frequency
// score. Text without sentence terminators is returned whole, trimmed.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}

	weights := s.wordWeights(sentences)

	type scored struct {
		pos   int
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, sentence := range sentences {
		words := s.words(sentence)
		var total float64
		for _, w := range words {
			total += weights[w]
		}
		// Dampen the long-sentence advantage.
		if n := float64(len(words)); n > 0 {
			total /= math.Sqrt(n)
		}
		ranked[i] = scored{pos: i, score: total}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if maxSentences > len(ranked) {
		maxSentences = len(ranked)
	}
	keep := make([]int, maxSentences)
	for i := range keep {
		keep[i] = ranked[i].pos
	}
	sort.Ints(keep)

	picked := make([]string, len(keep))
	for i, pos := range keep {
		picked[i] = strings.TrimSpace(sentences[pos])
	}
	return strings.Join(picked, " "), nil
}

// wordWeights counts content words across all sentences and scales the
// counts so the most frequent word weighs 1.
func (s *FrequencySummarizer) wordWeights(sentences []string) map[string]float64 {
	weights := make(map[string]float64)
	for _, sentence := range sentences {
		for _, w := range s.words(sentence) {
			weights[w]++
		}
	}
	var top float64
	for _, v := range weights {
		if v > top {
			top = v
		}
	}
	if top > 0 {
		for w := range weights {
			weights[w] /= top
		}
	}
	return weights
}

func (s *FrequencySummarizer) words(sentence string) []string {
	var out []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(sentence), -1) {
		if _, skip := s.stop[w]; skip {
			continue
		}
		out = append(out, w)
	}
	return out
}

func summaryStopwords() map[string]struct{} {
	words := strings.Fields(`a an the and or but if then else for to of in on
		at by with as is are was were be been being it this that these those
		from up down over under again further than so such into about between
		through during before after above below out off own same too very can
		will just don should now`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
