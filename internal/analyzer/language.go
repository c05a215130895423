package analyzer

import (
	"fmt"
	"math"
	"unicode"

	"github.com/zombar/newscred/internal/models"
)

// scriptShare is the fraction of letters that must belong to one script
// before the text is attributed to that script's language.
const scriptShare = 0.3

// LanguageAnalyzer guesses the dominant language of a text. Non-Latin scripts
// are recognized directly; Latin-script languages are scored against small
// function-word profiles. Detection never fails: unrecognizable text reports
// code "unknown" with zero confidence.
type LanguageAnalyzer struct {
	profiles  []languageProfile
	names     map[string]string
	supported map[string]bool
}

// NewLanguageAnalyzer creates a detector that marks English as the language
// the classifier understands.
func NewLanguageAnalyzer() *LanguageAnalyzer {
	return NewLanguageAnalyzerFor("en")
}

// NewLanguageAnalyzerFor creates a detector marking the given language codes
// as supported by the classifier.
func NewLanguageAnalyzerFor(codes ...string) *LanguageAnalyzer {
	supported := make(map[string]bool)
	for _, code := range codes {
		supported[code] = true
	}

	return &LanguageAnalyzer{
		profiles:  getLanguageProfiles(),
		names:     getLanguageNames(),
		supported: supported,
	}
}

func (la *LanguageAnalyzer) Name() string {
	return "language"
}

func (la *LanguageAnalyzer) Analyze(text *NormalizedText) (Partial, error) {
	info := la.Detect(text)
	return languagePartial(info), nil
}

type languagePartial models.LanguageInfo

func (p languagePartial) Apply(result *models.AnalysisResult) {
	info := models.LanguageInfo(p)
	result.Language = &info
}

// Detect guesses the language of the text.
func (la *LanguageAnalyzer) Detect(text *NormalizedText) models.LanguageInfo {
	counts := countScripts(text.Original)
	if counts.total == 0 {
		return la.info("unknown", 0)
	}

	if code, share := counts.dominant(); code != "" && share >= scriptShare {
		return la.info(code, share)
	}

	return la.detectLatin(text)
}

// detectLatin scores the text against each function-word profile and keeps
// the best match. Confidence blends the winner's share of all profile hits
// with how much of the text those hits cover, so a single stray function
// word in otherwise unknown text stays low-confidence.
func (la *LanguageAnalyzer) detectLatin(text *NormalizedText) models.LanguageInfo {
	if len(text.Tokens) == 0 {
		return la.info("unknown", 0)
	}

	freq := make(map[string]int, len(text.Tokens))
	for _, token := range text.Tokens {
		freq[token]++
	}

	bestCode := ""
	bestHits := 0
	totalHits := 0
	for _, profile := range la.profiles {
		hits := 0
		for _, word := range profile.words {
			hits += freq[word]
		}
		totalHits += hits
		if hits > bestHits {
			bestHits = hits
			bestCode = profile.code
		}
	}

	if bestHits == 0 {
		return la.info("unknown", 0)
	}

	share := float64(bestHits) / float64(totalHits)
	coverage := float64(bestHits) / float64(len(text.Tokens))
	confidence := share * math.Min(1, coverage*4)

	return la.info(bestCode, confidence)
}

func (la *LanguageAnalyzer) info(code string, confidence float64) models.LanguageInfo {
	name, ok := la.names[code]
	if !ok {
		if code == "unknown" {
			name = "Unknown"
		} else {
			name = fmt.Sprintf("Unknown (%s)", code)
		}
	}

	return models.LanguageInfo{
		Code:       code,
		Name:       name,
		Confidence: round2(confidence),
		Supported:  la.supported[code],
	}
}

// scriptCounts tallies letters per writing system.
type scriptCounts struct {
	latin      int
	cyrillic   int
	arabic     int
	devanagari int
	han        int
	kana       int
	hangul     int
	total      int
}

func countScripts(text string) scriptCounts {
	var c scriptCounts
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		c.total++
		switch {
		case unicode.Is(unicode.Latin, r):
			c.latin++
		case unicode.Is(unicode.Cyrillic, r):
			c.cyrillic++
		case unicode.Is(unicode.Arabic, r):
			c.arabic++
		case unicode.Is(unicode.Devanagari, r):
			c.devanagari++
		case unicode.Is(unicode.Han, r):
			c.han++
		case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
			c.kana++
		case unicode.Is(unicode.Hangul, r):
			c.hangul++
		}
	}
	return c
}

// dominant returns the language code of the strongest non-Latin script and
// its share of all letters. Kana plus Han reads as Japanese; Han alone as
// Chinese. An empty code means the text is Latin or mixed.
func (c scriptCounts) dominant() (string, float64) {
	total := float64(c.total)

	if c.kana > 0 && float64(c.kana+c.han)/total >= scriptShare {
		return "ja", float64(c.kana+c.han) / total
	}

	candidates := []struct {
		code  string
		count int
	}{
		{"zh", c.han},
		{"ko", c.hangul},
		{"ru", c.cyrillic},
		{"ar", c.arabic},
		{"hi", c.devanagari},
	}

	best := ""
	bestCount := 0
	for _, cand := range candidates {
		if cand.count > bestCount {
			bestCount = cand.count
			best = cand.code
		}
	}

	if best == "" {
		return "", 0
	}
	return best, float64(bestCount) / total
}
