// Package tokenizer is a shared text-analysis service rules can use for
// stemming and sentence splitting. A Service holds no mutable state, so one
// instance can be shared by every worker.
package tokenizer

import (
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"
)

// commonAbbreviations are words whose trailing period should not, by
// itself, be treated as a sentence boundary.
var commonAbbreviations = []string{
	"mr", "mrs", "ms", "dr", "prof", "sr", "jr", "vs", "etc", "e.g", "i.e",
	"st", "inc", "ltd", "co", "no",
}

// similarityThreshold is how close (0..1, from edlib's normalized
// Levenshtein similarity) a trailing word must be to a known abbreviation
// to be treated as one, tolerating minor OCR/typo noise in source text.
const similarityThreshold = 0.84

// Service is the shared stemming/sentence-splitting facility.
type Service struct{}

// New returns a Service. It holds no mutable state, so a single instance
// may be shared across goroutines.
func New() *Service {
	return &Service{}
}

// Stem returns the Porter2 stem of word.
func (s *Service) Stem(word string) string {
	return porter2.Stem(word)
}

// Sentences splits text into sentences, treating '.', '!' and '?' as
// terminators unless the word immediately preceding a '.' looks like a
// known abbreviation.
func (s *Service) Sentences(text string) []string {
	var sentences []string
	var sb strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		sb.WriteRune(r)

		if r != '.' && r != '!' && r != '?' {
			continue
		}

		if r == '.' && s.endsWithAbbreviation(sb.String()) {
			continue
		}

		// A terminator only ends a sentence if followed by whitespace or
		// end of input (not e.g. a decimal point or ellipsis mid-run).
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}

		sentence := strings.TrimSpace(sb.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		sb.Reset()
	}

	if rest := strings.TrimSpace(sb.String()); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// endsWithAbbreviation reports whether the last word of the accumulated
// sentence-so-far (which ends in '.') matches a known abbreviation,
// exactly or within similarityThreshold under Levenshtein similarity.
func (s *Service) endsWithAbbreviation(soFar string) bool {
	trimmed := strings.TrimSuffix(strings.TrimSpace(soFar), ".")
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return false
	}
	last := strings.ToLower(fields[len(fields)-1])

	for _, abbr := range commonAbbreviations {
		if last == abbr {
			return true
		}
		sim, err := edlib.StringsSimilarity(last, abbr, edlib.Levenshtein)
		if err == nil && float64(sim) >= similarityThreshold {
			return true
		}
	}
	return false
}
