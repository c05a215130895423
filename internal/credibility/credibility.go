package credibility

import (
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/zombar/newscred/internal/analyzer"
	"github.com/zombar/newscred/internal/models"
)

// Config holds the aggregation tunables. The constants are deliberately
// adjustable; tests pin bounds and ordering, not exact values.
type Config struct {
	PropagandaPenaltyCap  float64 `yaml:"propaganda_penalty_cap"`
	PropagandaPenaltyRate float64 `yaml:"propaganda_penalty_rate"`
	ShoutingRatio         float64 `yaml:"shouting_ratio"`
	ExclamationRatio      float64 `yaml:"exclamation_ratio"`
}

// DefaultConfig returns the built-in tuning.
func DefaultConfig() Config {
	return Config{
		PropagandaPenaltyCap:  20,
		PropagandaPenaltyRate: 0.2,
		ShoutingRatio:         0.1,
		ExclamationRatio:      0.2,
	}
}

// LoadConfig reads tunables from a YAML file. Omitted keys keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading credibility config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing credibility config: %w", err)
	}
	if cfg.PropagandaPenaltyCap < 0 || cfg.PropagandaPenaltyRate < 0 ||
		cfg.ShoutingRatio < 0 || cfg.ExclamationRatio < 0 {
		return cfg, fmt.Errorf("credibility config: negative tunable")
	}
	return cfg, nil
}

// Aggregator derives the credibility score, rationale and warning signs from
// finished analysis output. All methods are pure.
type Aggregator struct {
	cfg            Config
	sourceIssues   []string
	socialCallouts []string
}

// New builds an Aggregator with the given tuning.
func New(cfg Config) *Aggregator {
	return &Aggregator{
		cfg:            cfg,
		sourceIssues:   getSourceIssuePhrases(),
		socialCallouts: getSocialCalloutPhrases(),
	}
}

// Score computes the 0..100 credibility score from the verdict triple. A
// REAL lean contributes its confidence, a FAKE lean the complement, and an
// uncertain verdict sits at the midpoint; the propaganda score then deducts
// a capped penalty.
func (a *Aggregator) Score(label string, confidence, propagandaScore float64) int {
	var component float64
	switch label {
	case models.LabelReal:
		component = confidence
	case models.LabelFake:
		component = 1 - confidence
	default:
		component = 0.5
	}

	penalty := propagandaScore * a.cfg.PropagandaPenaltyRate
	if penalty > a.cfg.PropagandaPenaltyCap {
		penalty = a.cfg.PropagandaPenaltyCap
	}

	raw := 100*component - penalty
	if raw < 0 {
		raw = 0
	}
	if raw > 100 {
		raw = 100
	}
	return int(math.Round(raw))
}

// Rationale renders a short sentence naming the dominant signals behind the
// score.
func (a *Aggregator) Rationale(result *models.AnalysisResult) string {
	parts := []string{}

	switch result.Label {
	case models.LabelReal:
		parts = append(parts, fmt.Sprintf("The classifier leans REAL with %.0f%% confidence", result.Confidence*100))
	case models.LabelFake:
		parts = append(parts, fmt.Sprintf("The classifier leans FAKE with %.0f%% confidence", result.Confidence*100))
	default:
		parts = append(parts, fmt.Sprintf("The classifier is uncertain (top probability %.0f%%)", result.Confidence*100))
	}

	if p := result.Propaganda; p != nil {
		switch {
		case p.PropagandaScore >= 50:
			parts = append(parts, fmt.Sprintf("propaganda signals are heavy (%.0f/100)%s", p.PropagandaScore, dominantTechnique(p.Techniques)))
		case p.PropagandaScore >= 20:
			parts = append(parts, fmt.Sprintf("propaganda signals are moderate (%.0f/100)%s", p.PropagandaScore, dominantTechnique(p.Techniques)))
		default:
			parts = append(parts, "propaganda signals are low")
		}
	}

	if r := result.Readability; r != nil && r.AverageGradeLevel > 0 {
		parts = append(parts, fmt.Sprintf("the text reads at grade level %.1f", r.AverageGradeLevel))
	}
	if s := result.WritingStyle; s != nil && s.ClickbaitScore > 0 {
		parts = append(parts, "clickbait phrasing is present")
	}

	return strings.Join(parts, "; ") + "."
}

// WarningSigns scans the text and finished analysis for surface-level red
// flags. The list is empty, not nil, when nothing triggers.
func (a *Aggregator) WarningSigns(text *analyzer.NormalizedText, result *models.AnalysisResult) []string {
	signs := []string{}

	if words := len(text.Fields); words > 0 {
		exclaims := strings.Count(text.Original, "!")
		if exclaims >= 3 && float64(exclaims) >= a.cfg.ExclamationRatio*float64(words) {
			signs = append(signs, "Excessive exclamation marks")
		}
		shouting := countShoutingWords(text.Fields)
		if shouting >= 2 && float64(shouting) >= a.cfg.ShoutingRatio*float64(words) {
			signs = append(signs, "Heavy use of all-capital words")
		}
	}

	for _, phrase := range a.sourceIssues {
		if strings.Contains(text.Lower, phrase) {
			signs = append(signs, "Vague or anonymous sourcing")
			break
		}
	}
	for _, phrase := range a.socialCallouts {
		if strings.Contains(text.Lower, phrase) {
			signs = append(signs, "Social media call-to-action language")
			break
		}
	}

	if s := result.WritingStyle; s != nil && s.ClickbaitScore > 0 {
		signs = append(signs, "Clickbait-style phrasing")
	}
	if p := result.Propaganda; p != nil && p.PropagandaScore >= 50 {
		signs = append(signs, "Dense propaganda technique matches")
	}
	return signs
}

// dominantTechnique names the technique with the most hits, ties broken
// alphabetically.
func dominantTechnique(techniques map[string]int) string {
	best := ""
	hits := 0
	for name, count := range techniques {
		if count > hits || (count == hits && hits > 0 && name < best) {
			best = name
			hits = count
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(", mostly %s", strings.ReplaceAll(best, "_", " "))
}

func countShoutingWords(fields []string) int {
	count := 0
	for _, word := range fields {
		if isShouting(word) {
			count++
		}
	}
	return count
}

// isShouting reports whether a word is written in all capitals, ignoring
// punctuation. Single letters like "I" and "A" do not count.
func isShouting(word string) bool {
	letters := 0
	for _, r := range word {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 1
}
