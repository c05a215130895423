package classifier

import (
	"regexp"
	"strings"
	"unicode"
)

const negationScope = 3

var (
	urlPattern   = regexp.MustCompile(`https?://\S+|www\.\S+`)
	emailPattern = regexp.MustCompile(`\S+@\S+`)
	tagPattern   = regexp.MustCompile(`<.*?>`)
	digitPattern = regexp.MustCompile(`\d+`)

	// Word tokens, or single punctuation characters. Punctuation must survive
	// tokenization because it terminates negation scopes.
	tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+(?:['’][\p{L}]+)?|[^\p{L}\p{N}\s]`)
)

// preprocessor turns raw text into the token stream the vectorizer consumes:
// lower-case, placeholder substitution for URLs/emails/numbers, light
// lemmatization, negation marking and stop word removal.
type preprocessor struct {
	stopWords  map[string]bool
	keepWords  map[string]bool
	negations  map[string]bool
	irregulars map[string]string
}

func newPreprocessor() *preprocessor {
	return &preprocessor{
		stopWords:  getStopWords(),
		keepWords:  getKeepWords(),
		negations:  getNegationTokens(),
		irregulars: getIrregularLemmas(),
	}
}

// Tokens runs the full pipeline and returns the surviving tokens in order.
func (p *preprocessor) Tokens(text string) []string {
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, " url ")
	text = emailPattern.ReplaceAllString(text, " email ")
	text = tagPattern.ReplaceAllString(text, " ")
	text = digitPattern.ReplaceAllString(text, " number ")

	tokens := tokenPattern.FindAllString(text, -1)
	for i, token := range tokens {
		tokens[i] = p.lemmatize(token)
	}
	tokens = p.markNegations(tokens)

	kept := []string{}
	for _, token := range tokens {
		if p.stopWords[token] && !p.keepWords[token] {
			continue
		}
		if isPunctuationToken(token) {
			continue
		}
		kept = append(kept, token)
	}
	return kept
}

// lemmatize reduces plural nouns to their singular form with a small rule
// set plus an irregular table. It is intentionally shallow; the vectorizer
// vocabulary is built from the same rules.
func (p *preprocessor) lemmatize(token string) string {
	if lemma, ok := p.irregulars[token]; ok {
		return lemma
	}
	if len(token) <= 3 {
		return token
	}

	switch {
	case strings.HasSuffix(token, "ies") && len(token) > 4:
		return token[:len(token)-3] + "y"
	case strings.HasSuffix(token, "sses"):
		return token[:len(token)-2]
	case strings.HasSuffix(token, "xes"), strings.HasSuffix(token, "ches"), strings.HasSuffix(token, "shes"), strings.HasSuffix(token, "zes"):
		return token[:len(token)-2]
	case strings.HasSuffix(token, "ss"), strings.HasSuffix(token, "us"), strings.HasSuffix(token, "is"):
		return token
	case strings.HasSuffix(token, "s"):
		return token[:len(token)-1]
	}
	return token
}

// markNegations rewrites the tokens following a negation word as not_<token>.
// The scope covers up to three tokens and ends early at punctuation.
func (p *preprocessor) markNegations(tokens []string) []string {
	result := make([]string, 0, len(tokens))
	remaining := 0

	for _, token := range tokens {
		switch {
		case p.negations[token]:
			result = append(result, token)
			remaining = negationScope
		case isPunctuationToken(token):
			result = append(result, token)
			remaining = 0
		case remaining > 0:
			result = append(result, "not_"+token)
			remaining--
		default:
			result = append(result, token)
		}
	}
	return result
}

func isPunctuationToken(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return len(token) > 0
}
