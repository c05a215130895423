package analyzer

import (
	"regexp"

	"github.com/zombar/newscred/internal/models"
)

var exclaimRunPattern = regexp.MustCompile(`!{2,}`)

// PropagandaAnalyzer counts phrase hits for each rhetorical technique and
// folds them into a density score on a 0..100 scale. Shouting signals
// (ALL-CAPS words, repeated exclamation marks) count toward the exaggeration
// technique even when no phrase matches.
type PropagandaAnalyzer struct {
	techniques map[string][]*regexp.Regexp
}

func NewPropagandaAnalyzer() *PropagandaAnalyzer {
	techniques := make(map[string][]*regexp.Regexp)
	for name, phrases := range getPropagandaLexicons() {
		techniques[name] = compilePhrasePatterns(phrases)
	}
	return &PropagandaAnalyzer{techniques: techniques}
}

// compilePhrasePatterns builds a word-boundary matcher per phrase.
func compilePhrasePatterns(phrases []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(phrases))
	for _, phrase := range phrases {
		patterns = append(patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(phrase)+`\b`))
	}
	return patterns
}

// countMatches sums match counts across patterns.
func countMatches(patterns []*regexp.Regexp, text string) int {
	count := 0
	for _, pattern := range patterns {
		count += len(pattern.FindAllStringIndex(text, -1))
	}
	return count
}

func (pa *PropagandaAnalyzer) Name() string {
	return "propaganda"
}

func (pa *PropagandaAnalyzer) Analyze(text *NormalizedText) (Partial, error) {
	return propagandaPartial(pa.Detect(text)), nil
}

type propagandaPartial models.PropagandaInfo

func (p propagandaPartial) Apply(result *models.AnalysisResult) {
	info := models.PropagandaInfo(p)
	result.Propaganda = &info
}

// Detect counts technique hits across the lower-cased text. Only techniques
// that actually occur appear in the map. The score weights phrase hits,
// ALL-CAPS words and exclamation runs, normalizes by sentence count and
// clamps to 0..100. It is a best-effort signal, not ground truth.
func (pa *PropagandaAnalyzer) Detect(text *NormalizedText) models.PropagandaInfo {
	hits := make(map[string]int)
	lexiconTotal := 0

	for name, patterns := range pa.techniques {
		count := countMatches(patterns, text.Lower)
		if count > 0 {
			hits[name] = count
			lexiconTotal += count
		}
	}

	// A lone all-caps word is usually an acronym, so shouting needs at
	// least two.
	capsWords := 0
	for _, field := range text.Fields {
		if len(field) > 1 && isAllUpper(field) {
			capsWords++
		}
	}
	if capsWords < 2 {
		capsWords = 0
	}
	exclaimRuns := len(exclaimRunPattern.FindAllStringIndex(text.Original, -1))

	if capsWords+exclaimRuns > 0 {
		hits["exaggeration"] += capsWords + exclaimRuns
	}

	weighted := float64(lexiconTotal) + 0.5*float64(capsWords) + float64(exclaimRuns)
	score := weighted / float64(len(text.Sentences)+1) * 20
	if score > 100 {
		score = 100
	}

	return models.PropagandaInfo{
		Techniques:      hits,
		PropagandaScore: round2(score),
	}
}
