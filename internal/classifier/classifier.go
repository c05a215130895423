package classifier

import (
	_ "embed"
	"math"
	"os"

	"github.com/zombar/newscred/internal/apperr"
	"github.com/zombar/newscred/internal/models"
)

//go:embed model.json
var defaultModel []byte

// UncertainThreshold is the winning-class probability below which a
// prediction is reported as UNCERTAIN instead of FAKE or REAL.
const UncertainThreshold = 0.55

// Prediction is the classifier verdict for one document.
type Prediction struct {
	Label         string             `json:"label"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// Classifier scores text with a TF-IDF logistic regression model. It is
// stateless after construction and safe for concurrent use.
type Classifier struct {
	art  *Artifact
	prep *preprocessor
}

// LoadDefault builds a classifier from the embedded model artifact.
func LoadDefault() (*Classifier, error) {
	return New(defaultModel)
}

// Load builds a classifier from a model artifact on disk.
func Load(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperr.ModelUnavailableError{Cause: err}
	}
	return New(data)
}

// New builds a classifier from raw artifact bytes.
func New(data []byte) (*Classifier, error) {
	art, err := loadArtifact(data)
	if err != nil {
		return nil, &apperr.ModelUnavailableError{Cause: err}
	}
	return &Classifier{art: art, prep: newPreprocessor()}, nil
}

// Predict classifies raw text. The winning class keeps its name only when
// its probability clears UncertainThreshold; otherwise the label degrades
// to UNCERTAIN while the probabilities still report the full distribution.
func (c *Classifier) Predict(text string) Prediction {
	probs := c.Proba(text)

	label := c.art.Classes[0]
	best := probs[label]
	for _, class := range c.art.Classes[1:] {
		if probs[class] > best {
			label = class
			best = probs[class]
		}
	}
	if best < UncertainThreshold {
		label = models.LabelUncertain
	}

	for class, p := range probs {
		probs[class] = round4(p)
	}
	return Prediction{Label: label, Confidence: round4(best), Probabilities: probs}
}

// Proba returns class probabilities for raw text, keyed by class name.
func (c *Classifier) Proba(text string) map[string]float64 {
	return c.ProbaTokens(c.Preprocess(text))
}

// ProbaTokens returns class probabilities for an already-preprocessed token
// stream. Explainers that perturb token streams call this directly to skip
// re-tokenization.
func (c *Classifier) ProbaTokens(tokens []string) map[string]float64 {
	pos := sigmoid(c.Decision(c.Vectorize(tokens)))
	return map[string]float64{
		c.art.Classes[0]: 1 - pos,
		c.art.Classes[1]: pos,
	}
}

// Preprocess returns the normalized token stream that feeds vectorization.
func (c *Classifier) Preprocess(text string) []string {
	return c.prep.Tokens(text)
}

// Vectorize maps a token stream onto the model's TF-IDF feature space and
// l2-normalizes the result. Terms outside the vocabulary are ignored.
func (c *Classifier) Vectorize(tokens []string) map[int]float64 {
	features := make(map[int]float64)
	for _, token := range tokens {
		if idx, ok := c.art.Vocabulary[token]; ok {
			features[idx]++
		}
	}
	if len(features) == 0 {
		return features
	}

	var norm float64
	for idx, tf := range features {
		v := tf * c.art.IDF[idx]
		features[idx] = v
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for idx := range features {
		features[idx] /= norm
	}
	return features
}

// Decision computes the raw regression margin for a feature vector. Positive
// margins favor the positive class.
func (c *Classifier) Decision(features map[int]float64) float64 {
	z := c.art.Intercept
	for idx, v := range features {
		z += c.art.Coefficients[idx] * v
	}
	return z
}

// Classes returns the class names in model order.
func (c *Classifier) Classes() []string {
	out := make([]string, len(c.art.Classes))
	copy(out, c.art.Classes)
	return out
}

// PositiveClass is the class whose probability the sigmoid produces directly.
func (c *Classifier) PositiveClass() string {
	return c.art.Classes[1]
}

// Version reports the artifact's model version string.
func (c *Classifier) Version() string {
	return c.art.ModelVersion
}

// TermIndex returns the feature column for a vocabulary term.
func (c *Classifier) TermIndex(term string) (int, bool) {
	idx, ok := c.art.Vocabulary[term]
	return idx, ok
}

// Coefficient returns the regression weight for a vocabulary term, or zero
// for terms outside the vocabulary.
func (c *Classifier) Coefficient(term string) float64 {
	if idx, ok := c.art.Vocabulary[term]; ok {
		return c.art.Coefficients[idx]
	}
	return 0
}

// Intercept returns the model bias term.
func (c *Classifier) Intercept() float64 {
	return c.art.Intercept
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
