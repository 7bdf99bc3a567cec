package snip

import (
	"sort"

	"snip-go/internal/token"
)

// SearchResult is one ranked hit. TermFrequencies maps each matched stemmed
// term to its occurrence count in the document; the document's word count is
// available on Document for display alongside.
type SearchResult struct {
	Document        *Document
	Score           float64
	TermFrequencies map[string]int
	Snippets        []Snippet
}

// scoreDocument computes the relevance of a document from its matched term
// frequencies and total word count. The measure is plain term frequency
// normalized by document length: the share of the document's words that
// matched the query. No corpus-wide statistic is involved, so scores are
// stable as the store grows. Always finite and non-negative; zero matches
// never reach here.
func scoreDocument(freqs map[string]int, wordCount int) float64 {
	if wordCount <= 0 {
		return 0
	}
	matched := 0
	for _, f := range freqs {
		matched += f
	}
	return float64(matched) / float64(wordCount)
}

// rankResults orders results by score descending. Ties break by creation
// time, then identifier, ascending, so rankings are reproducible run to run.
func rankResults(results []SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		di, dj := results[i].Document, results[j].Document
		if !di.CreatedAt.Equal(dj.CreatedAt) {
			return di.CreatedAt.Before(dj.CreatedAt)
		}
		return di.ID < dj.ID
	})
}

// matchPositions re-derives the original word positions in body where one of
// the query terms occurs. Positions come back in document order, one entry
// per occurrence.
func matchPositions(body string, queryTerms map[string]bool, stemmer token.Stemmer) []int {
	var positions []int
	for _, t := range token.Normalize(body, stemmer) {
		if queryTerms[t.Text] {
			positions = append(positions, t.Position)
		}
	}
	return positions
}
