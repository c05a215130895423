package analyzer

import (
	"math"
	"strings"

	"github.com/zombar/newscred/internal/models"
)

// ReadabilityAnalyzer computes the standard reading-difficulty indices.
type ReadabilityAnalyzer struct{}

func NewReadabilityAnalyzer() *ReadabilityAnalyzer {
	return &ReadabilityAnalyzer{}
}

func (ra *ReadabilityAnalyzer) Name() string {
	return "readability"
}

func (ra *ReadabilityAnalyzer) Analyze(text *NormalizedText) (Partial, error) {
	scores := scoreReadability(text)
	return readabilityPartial(scores), nil
}

type readabilityPartial models.ReadabilityScores

func (p readabilityPartial) Apply(result *models.AnalysisResult) {
	scores := models.ReadabilityScores(p)
	result.Readability = &scores
}

// scoreReadability computes the six indices over letter-bearing tokens. Text
// with no sentences or no words scores zero across the board rather than
// dividing by zero.
func scoreReadability(text *NormalizedText) models.ReadabilityScores {
	words := []string{}
	for _, token := range text.Tokens {
		if hasLetter(token) {
			words = append(words, token)
		}
	}

	sentenceCount := len(text.Sentences)
	wordCount := len(words)
	if sentenceCount == 0 || wordCount == 0 {
		return models.ReadabilityScores{}
	}

	syllableCount := 0
	complexCount := 0
	characterCount := 0
	for _, word := range words {
		syllables := countWordSyllables(word)
		syllableCount += syllables
		if syllables >= 3 {
			complexCount++
		}
		characterCount += len(word)
	}

	wordsPerSentence := float64(wordCount) / float64(sentenceCount)
	syllablesPerWord := float64(syllableCount) / float64(wordCount)
	complexPerWord := float64(complexCount) / float64(wordCount)
	charsPerWord := float64(characterCount) / float64(wordCount)

	// Coleman-Liau works on counts per 100 words.
	lettersPer100 := charsPerWord * 100
	sentencesPer100 := float64(sentenceCount) / float64(wordCount) * 100

	fleschEase := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	fleschKincaid := 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59
	gunningFog := 0.4 * (wordsPerSentence + 100*complexPerWord)
	smog := 1.043*math.Sqrt(float64(complexCount)*30/float64(sentenceCount)) + 3.1291
	colemanLiau := 0.0588*lettersPer100 - 0.296*sentencesPer100 - 15.8
	automated := 4.71*charsPerWord + 0.5*wordsPerSentence - 21.43

	average := (fleschKincaid + gunningFog + smog + colemanLiau + automated) / 5

	return models.ReadabilityScores{
		FleschReadingEase:  round2(fleschEase),
		FleschKincaidGrade: round2(fleschKincaid),
		GunningFog:         round2(gunningFog),
		SMOGIndex:          round2(smog),
		ColemanLiau:        round2(colemanLiau),
		AutomatedIndex:     round2(automated),
		AverageGradeLevel:  round2(average),
	}
}

// countWordSyllables estimates syllables by counting vowel groups. Short
// words count as one syllable and a trailing silent e is dropped first.
func countWordSyllables(word string) int {
	word = strings.ToLower(word)
	if len(word) <= 3 {
		return 1
	}
	word = strings.TrimSuffix(word, "e")

	count := 0
	prevWasVowel := false
	for _, r := range word {
		isVowel := strings.ContainsRune("aeiouy", r)
		if isVowel && !prevWasVowel {
			count++
		}
		prevWasVowel = isVowel
	}

	if count == 0 {
		return 1
	}
	return count
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
