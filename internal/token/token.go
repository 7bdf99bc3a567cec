// Package token turns raw document text into the normalized term sequence
// used by the index and the query engine. Word boundaries are runs of
// non-alphanumeric characters; the same scanner also reports byte offsets so
// snippet extraction can quote the original, unstemmed text.
package token

import "unicode"

// Word is a single run of letters or digits in the original text.
// Start and End are byte offsets into the source string; Text is the
// original (unstemmed, case-preserved) word.
type Word struct {
	Text  string
	Start int
	End   int
}

// Term is a normalized token: stemmed and lowercased. Position is the
// zero-based index of the word in the original word sequence, not the
// stemmed sequence.
type Term struct {
	Text     string
	Position int
}

// Words splits text into words. Any run of non-alphanumeric characters acts
// as a separator. Empty input yields an empty slice.
func Words(text string) []Word {
	var words []Word
	start := -1
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, Word{Text: text[start:i], Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, Word{Text: text[start:], Start: start, End: len(text)})
	}
	return words
}

// Normalize splits text into words and stems each one. Words that stem to
// the empty string are discarded. The returned terms keep the position of
// the original word they came from, so positions may have gaps.
func Normalize(text string, stemmer Stemmer) []Term {
	words := Words(text)
	terms := make([]Term, 0, len(words))
	for i, w := range words {
		stemmed := stemmer.Stem(w.Text)
		if stemmed == "" {
			continue
		}
		terms = append(terms, Term{Text: stemmed, Position: i})
	}
	return terms
}

// Frequencies aggregates a normalized term sequence into per-term counts.
// The sum of all counts equals len(terms).
func Frequencies(terms []Term) map[string]int {
	freqs := make(map[string]int, len(terms))
	for _, t := range terms {
		freqs[t.Text]++
	}
	return freqs
}
