package classifier

import (
	"encoding/json"
	"fmt"
)

// Artifact is the serialized form of a trained TF-IDF logistic regression
// model. Vocabulary maps each term to its column in the idf and coefficient
// vectors; classes are ordered so the sigmoid output is the probability of
// the second class.
type Artifact struct {
	ModelVersion string         `json:"model_version"`
	Classes      []string       `json:"classes"`
	Vocabulary   map[string]int `json:"vocabulary"`
	IDF          []float64      `json:"idf"`
	Coefficients []float64      `json:"coefficients"`
	Intercept    float64        `json:"intercept"`
}

func loadArtifact(data []byte) (*Artifact, error) {
	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("parsing model artifact: %w", err)
	}
	if err := art.validate(); err != nil {
		return nil, err
	}
	return &art, nil
}

func (a *Artifact) validate() error {
	if len(a.Classes) != 2 {
		return fmt.Errorf("model artifact: expected 2 classes, got %d", len(a.Classes))
	}
	if len(a.Vocabulary) == 0 {
		return fmt.Errorf("model artifact: empty vocabulary")
	}
	if len(a.IDF) != len(a.Vocabulary) {
		return fmt.Errorf("model artifact: idf length %d does not match vocabulary size %d", len(a.IDF), len(a.Vocabulary))
	}
	if len(a.Coefficients) != len(a.Vocabulary) {
		return fmt.Errorf("model artifact: coefficient length %d does not match vocabulary size %d", len(a.Coefficients), len(a.Vocabulary))
	}
	seen := make([]bool, len(a.Vocabulary))
	for term, idx := range a.Vocabulary {
		if idx < 0 || idx >= len(seen) {
			return fmt.Errorf("model artifact: term %q has out-of-range index %d", term, idx)
		}
		if seen[idx] {
			return fmt.Errorf("model artifact: duplicate vocabulary index %d", idx)
		}
		seen[idx] = true
	}
	return nil
}
