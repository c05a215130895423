package explain

import (
	"github.com/zombar/newscred/internal/classifier"
	"github.com/zombar/newscred/internal/models"
)

// shapExplainer computes exact additive attributions for the linear model.
// The margin decomposes into one coefficient-times-feature term per
// vocabulary token, so Shapley values need no sampling: each token
// contributes its own term and the intercept is the base value. Tokens the
// model has never seen contribute nothing and are omitted.
type shapExplainer struct {
	clf *classifier.Classifier
}

func (s *shapExplainer) explain(text string, numFeatures int) (*models.Explanation, error) {
	tokens := s.clf.Preprocess(text)
	probs := s.clf.ProbaTokens(tokens)
	class, prob := winner(probs, s.clf.Classes())

	// Attributions are reported toward the predicted class, so the margin
	// flips when the model leans toward the negative class.
	sign := 1.0
	if class != s.clf.PositiveClass() {
		sign = -1
	}

	vector := s.clf.Vectorize(tokens)
	features := make([]models.TokenWeight, 0, len(vector))
	for _, tok := range distinctTokens(tokens) {
		idx, ok := s.clf.TermIndex(tok)
		if !ok {
			continue
		}
		contribution := sign * s.clf.Coefficient(tok) * vector[idx]
		if contribution == 0 {
			continue
		}
		features = append(features, models.TokenWeight{Token: tok, Importance: contribution})
	}

	return buildExplanation(models.MethodShap, class, prob, sign*s.clf.Intercept(), sortFeatures(features, numFeatures)), nil
}
