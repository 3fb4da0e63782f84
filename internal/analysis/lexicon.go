package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyLexicon is returned when either polarity word list is empty.
var ErrEmptyLexicon = errors.New("sentiment lexicon must include positive and negative words")

var defaultStopwords = []string{
	"the", "and", "with", "from", "that", "this", "have", "has", "were", "was", "are", "for",
	"too", "very", "but", "not", "you", "your", "our", "their", "they", "them", "about",
	"into", "when", "while", "where", "which", "what", "would", "could", "should",
}

// DefaultStopwords returns a copy of the built-in stopword list.
func DefaultStopwords() []string {
	return append([]string(nil), defaultStopwords...)
}

// Lexicon holds the polarity word lists and the clustering stopwords.
type Lexicon struct {
	positive  TokenSet
	negative  TokenSet
	stopwords TokenSet
}

// NewLexicon lowercases and indexes the word lists. A nil stopwords slice
// selects DefaultStopwords; an empty non-nil slice disables stopwords.
func NewLexicon(positive, negative, stopwords []string) (*Lexicon, error) {
	if len(positive) == 0 || len(negative) == 0 {
		return nil, ErrEmptyLexicon
	}
	if stopwords == nil {
		stopwords = defaultStopwords
	}

	return &Lexicon{
		positive:  lowerSet(positive),
		negative:  lowerSet(negative),
		stopwords: lowerSet(stopwords),
	}, nil
}

func lowerSet(words []string) TokenSet {
	set := make(TokenSet, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

func (l *Lexicon) IsPositive(token string) bool { return l.positive.Has(token) }
func (l *Lexicon) IsNegative(token string) bool { return l.negative.Has(token) }

// Stopwords exposes the clustering stopword set. Callers must not modify it.
func (l *Lexicon) Stopwords() TokenSet { return l.stopwords }

type lexiconFile struct {
	Positive  []string `json:"positive" yaml:"positive"`
	Negative  []string `json:"negative" yaml:"negative"`
	Stopwords []string `json:"stopwords,omitempty" yaml:"stopwords,omitempty"`
}

// LoadLexicon reads a JSON or YAML (.yaml/.yml) lexicon file.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file %s: %w", path, err)
	}

	var file lexiconFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse sentiment lexicon: %w", err)
	}

	return NewLexicon(file.Positive, file.Negative, file.Stopwords)
}
