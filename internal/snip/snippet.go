package snip

import "snip-go/internal/token"

// Snippet is a bounded window of original words surrounding a query match.
// StartWord and EndWord are inclusive word indexes; Text is the literal
// substring of the original document covering that word range, so it shows
// the unstemmed forms.
type Snippet struct {
	StartWord int
	EndWord   int
	Text      string
}

// ExtractContext emits one snippet per match position, in position order.
// Each window spans [position-window, position+window] clamped to document
// boundaries. Windows of nearby matches are not merged; each occurrence
// gets its own snippet.
func ExtractContext(body string, positions []int, window int) []Snippet {
	words := token.Words(body)
	if len(words) == 0 {
		return nil
	}

	snippets := make([]Snippet, 0, len(positions))
	for _, pos := range positions {
		if pos < 0 || pos >= len(words) {
			continue
		}
		start := pos - window
		if start < 0 {
			start = 0
		}
		end := pos + window
		if end > len(words)-1 {
			end = len(words) - 1
		}
		snippets = append(snippets, Snippet{
			StartWord: start,
			EndWord:   end,
			Text:      body[words[start].Start:words[end].End],
		})
	}
	return snippets
}
