package analyzer

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/zombar/newscred/internal/models"
)

// UniquenessAnalyzer fingerprints a text: the ratio of distinct words to
// total words, and a content hash over the normalized form so texts differing
// only in case or spacing collide.
type UniquenessAnalyzer struct{}

func NewUniquenessAnalyzer() *UniquenessAnalyzer {
	return &UniquenessAnalyzer{}
}

func (ua *UniquenessAnalyzer) Name() string {
	return "uniqueness"
}

func (ua *UniquenessAnalyzer) Analyze(text *NormalizedText) (Partial, error) {
	return uniquenessPartial(fingerprint(text)), nil
}

type uniquenessPartial models.UniquenessInfo

func (p uniquenessPartial) Apply(result *models.AnalysisResult) {
	info := models.UniquenessInfo(p)
	result.Uniqueness = &info
}

func fingerprint(text *NormalizedText) models.UniquenessInfo {
	diversity := 0.0
	if len(text.Tokens) > 0 {
		unique := make(map[string]bool, len(text.Tokens))
		for _, token := range text.Tokens {
			unique[token] = true
		}
		diversity = float64(len(unique)) / float64(len(text.Tokens))
	}

	sum := md5.Sum([]byte(text.Normalized))

	return models.UniquenessInfo{
		LexicalDiversity: diversity,
		ContentHash:      hex.EncodeToString(sum[:]),
	}
}
