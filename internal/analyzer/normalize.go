package analyzer

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	wordPattern     = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)?`)
	sentencePattern = regexp.MustCompile(`[.!?]+`)
)

// NormalizedText is the tokenized view of one input text. It is computed once
// per request and shared read-only by every analyzer.
type NormalizedText struct {
	Original   string   // verbatim input
	Lower      string   // lower-cased input
	Normalized string   // lower-cased with whitespace collapsed, used for hashing
	Fields     []string // whitespace-split words of the original, case preserved
	Tokens     []string // lower-cased word tokens
	Sentences  []string // sentence fragments with terminators stripped
}

// Normalize tokenizes raw text into the shared view.
func Normalize(raw string) *NormalizedText {
	lower := strings.ToLower(raw)

	return &NormalizedText{
		Original:   raw,
		Lower:      lower,
		Normalized: strings.Join(strings.Fields(lower), " "),
		Fields:     strings.Fields(raw),
		Tokens:     wordPattern.FindAllString(lower, -1),
		Sentences:  splitSentences(raw),
	}
}

// WordCount returns the number of word tokens.
func (n *NormalizedText) WordCount() int {
	return len(n.Tokens)
}

// SentenceCount returns the number of sentences.
func (n *NormalizedText) SentenceCount() int {
	return len(n.Sentences)
}

// splitSentences breaks text on runs of sentence terminators. Text without a
// terminator is a single sentence; blank text has none.
func splitSentences(text string) []string {
	parts := sentencePattern.Split(text, -1)

	sentences := []string{}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// hasLetter reports whether the token contains at least one letter.
func hasLetter(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// isAllUpper reports whether the word is written entirely in capitals.
// Punctuation is ignored; at least one letter is required.
func isAllUpper(word string) bool {
	hasUpper := false
	for _, r := range word {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}
