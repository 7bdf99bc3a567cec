package token

import (
	"fmt"
	"strings"

	snowballeng "github.com/kljensen/snowball/english"

	"snip-go/internal/config"
)

// Stemmer reduces a word to its canonical root form. Implementations must be
// deterministic: the index and the query engine rely on both sides producing
// identical terms for the same input.
type Stemmer interface {
	Stem(word string) string
}

// SnowballStemmer applies the Snowball (Porter2) English algorithm.
// "birds" -> "bird", "nature" -> "natur".
type SnowballStemmer struct{}

var _ Stemmer = SnowballStemmer{}

func (SnowballStemmer) Stem(word string) string {
	return snowballeng.Stem(strings.ToLower(word), false)
}

// FoldStemmer only lowercases. It keeps tests independent of the Snowball
// algorithm version and gives users an exact-match mode.
type FoldStemmer struct{}

var _ Stemmer = FoldStemmer{}

func (FoldStemmer) Stem(word string) string {
	return strings.ToLower(word)
}

// NewStemmerFromConfig creates a Stemmer based on the stemmer config type.
func NewStemmerFromConfig(cfg config.StemmerConfig) (Stemmer, error) {
	switch cfg.Type {
	case "snowball", "":
		return SnowballStemmer{}, nil
	case "fold":
		return FoldStemmer{}, nil
	default:
		return nil, fmt.Errorf("unknown stemmer type: %q", cfg.Type)
	}
}
