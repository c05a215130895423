package analyzer

import (
	"math"
	"regexp"
	"strings"

	"github.com/zombar/newscred/internal/models"
)

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// StyleAnalyzer computes surface statistics and rhetorical habits: hedging
// and absolutist language, clickbait phrasing, pronoun density and a lexicon
// sentiment estimate.
type StyleAnalyzer struct {
	hedging      []*regexp.Regexp
	exaggeration []*regexp.Regexp
	clickbait    []string
	pronouns     map[string]bool
	positive     map[string]bool
	negative     map[string]bool
}

func NewStyleAnalyzer() *StyleAnalyzer {
	return &StyleAnalyzer{
		hedging:      compilePhrasePatterns(getHedgingPhrases()),
		exaggeration: compilePhrasePatterns(getExaggerationPhrases()),
		clickbait:    getClickbaitPhrases(),
		pronouns:     getPersonalPronouns(),
		positive:     getPositiveWords(),
		negative:     getNegativeWords(),
	}
}

func (sa *StyleAnalyzer) Name() string {
	return "style"
}

func (sa *StyleAnalyzer) Analyze(text *NormalizedText) (Partial, error) {
	return stylePartial{
		stats: sa.Stats(text),
		style: sa.Style(text),
	}, nil
}

type stylePartial struct {
	stats models.TextStats
	style models.WritingStyle
}

func (p stylePartial) Apply(result *models.AnalysisResult) {
	stats := p.stats
	style := p.style
	result.TextStats = &stats
	result.WritingStyle = &style
}

// Stats computes the surface statistics of the text.
func (sa *StyleAnalyzer) Stats(text *NormalizedText) models.TextStats {
	stats := models.TextStats{
		WordCount:        len(text.Tokens),
		SentenceCount:    len(text.Sentences),
		ExclamationCount: strings.Count(text.Original, "!"),
		QuestionCount:    strings.Count(text.Original, "?"),
	}
	if stats.WordCount == 0 {
		return stats
	}

	totalLength := 0
	pronounCount := 0
	for _, token := range text.Tokens {
		totalLength += len(token)

		// Contractions like i'm still count as their base pronoun.
		base := token
		if i := strings.IndexAny(token, "'’"); i > 0 {
			base = token[:i]
		}
		if sa.pronouns[base] {
			pronounCount++
		}
	}
	stats.AvgWordLength = round2(float64(totalLength) / float64(stats.WordCount))
	if stats.SentenceCount > 0 {
		stats.AvgSentenceLength = round2(float64(stats.WordCount) / float64(stats.SentenceCount))
	}

	capsCount := 0
	for _, field := range text.Fields {
		if len(field) > 1 && isAllUpper(field) {
			capsCount++
		}
	}
	stats.CapitalizedRatio = float64(capsCount) / float64(stats.WordCount)

	punctCount := 0
	for _, r := range text.Original {
		if strings.ContainsRune(asciiPunctuation, r) {
			punctCount++
		}
	}
	stats.PunctuationRatio = float64(punctCount) / float64(stats.WordCount)

	stats.PersonalPronouns = pronounCount
	return stats
}

// Style counts the rhetorical signals.
func (sa *StyleAnalyzer) Style(text *NormalizedText) models.WritingStyle {
	clickbait := 0
	for _, phrase := range sa.clickbait {
		if strings.Contains(text.Lower, phrase) {
			clickbait++
		}
	}

	sentiment, score := sa.sentiment(text.Tokens)

	return models.WritingStyle{
		HedgingCount:      countMatches(sa.hedging, text.Lower),
		ExaggerationCount: countMatches(sa.exaggeration, text.Lower),
		ClickbaitScore:    clickbait,
		Sentiment:         sentiment,
		SentimentScore:    score,
	}
}

// sentiment scores the token stream against the positive and negative
// lexicons. The score lands in -1..1 with a dead zone around zero labeled
// neutral.
func (sa *StyleAnalyzer) sentiment(tokens []string) (string, float64) {
	positiveCount := 0
	negativeCount := 0
	for _, token := range tokens {
		if sa.positive[token] {
			positiveCount++
		}
		if sa.negative[token] {
			negativeCount++
		}
	}

	if positiveCount+negativeCount == 0 || len(tokens) == 0 {
		return "neutral", 0
	}

	score := (float64(positiveCount) - float64(negativeCount)) / float64(len(tokens))
	score = math.Max(-1.0, math.Min(1.0, score*10))

	sentiment := "neutral"
	if score > 0.1 {
		sentiment = "positive"
	} else if score < -0.1 {
		sentiment = "negative"
	}

	return sentiment, round2(score)
}
