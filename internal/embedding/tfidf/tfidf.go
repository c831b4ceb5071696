// Package tfidf is a corpus-local embedder: it vectorizes text by smoothed
// TF-IDF over a vocabulary learned during Prepare. It needs no network and
// anchors the pipeline tests, but its vocabulary lives only in memory, so
// ingest and query must happen in the same process.
package tfidf

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

var wordPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// Embedder maps text to L2-normalized TF-IDF vectors. Zero value is not
// usable; construct with NewEmbedder and call Prepare before Embed.
type Embedder struct {
	index map[string]int
	idf   []float64
	stop  map[string]struct{}
}

// NewEmbedder creates an unprepared TF-IDF embedder.
func NewEmbedder() *Embedder {
	return &Embedder{stop: stopwords()}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare learns the vocabulary and inverse document frequencies from the
// corpus. Terms are ordered lexicographically so the vector layout is stable
// across runs over the same corpus.
func (e *Embedder) Prepare(_ context.Context, corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	counts := make(map[string]int)
	for _, text := range corpus {
		for term := range e.termSet(text) {
			counts[term]++
		}
	}
	if len(counts) == 0 {
		return errors.New("no tokens found in corpus; ensure tokenizer supports your language")
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	docs := float64(len(corpus))
	e.index = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	for i, term := range terms {
		e.index[term] = i
		e.idf[i] = math.Log((1+docs)/(1+float64(counts[term]))) + 1
	}
	return nil
}

// Dimension returns the vocabulary size, or 0 before Prepare.
func (e *Embedder) Dimension() int { return len(e.idf) }

// Embed vectorizes text over the prepared vocabulary. Text made entirely of
// unknown terms yields the zero vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	if e.index == nil {
		return nil, errors.New("tfidf embedder not prepared")
	}
	vec := make([]float64, len(e.idf))

	hits := make(map[int]float64)
	known := 0.0
	for _, term := range e.tokenize(text) {
		if i, ok := e.index[term]; ok {
			hits[i]++
			known++
		}
	}
	if known == 0 {
		return vec, nil
	}
	var sumSq float64
	for i, count := range hits {
		w := (count / known) * e.idf[i]
		vec[i] = w
		sumSq += w * w
	}
	if norm := math.Sqrt(sumSq); norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

func (e *Embedder) tokenize(text string) []string {
	var out []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, skip := e.stop[w]; skip {
			continue
		}
		out = append(out, w)
	}
	return out
}

func (e *Embedder) termSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range e.tokenize(text) {
		set[w] = struct{}{}
	}
	return set
}

func stopwords() map[string]struct{} {
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
