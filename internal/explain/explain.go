package explain

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/zombar/newscred/internal/apperr"
	"github.com/zombar/newscred/internal/classifier"
	"github.com/zombar/newscred/internal/models"
)

// Options control one explanation run. Zero values fall back to the lime
// method, 10 features and a fixed seed, so explanations are reproducible
// unless a caller opts out.
type Options struct {
	Method      string
	NumFeatures int
	Seed        int64
}

// Explainer produces per-token importance for classifier verdicts.
type Explainer struct {
	lime *limeExplainer
	shap *shapExplainer
}

// New builds an Explainer over a loaded classifier.
func New(clf *classifier.Classifier) *Explainer {
	return &Explainer{
		lime: &limeExplainer{clf: clf, samples: defaultSamples},
		shap: &shapExplainer{clf: clf},
	}
}

// Explain runs the requested method over the text. With method "both" the
// two methods run independently; one failing leaves the other's result
// intact and records the failure under its method name.
func (e *Explainer) Explain(ctx context.Context, text string, opts Options) (*models.ExplanationResult, error) {
	if opts.Method == "" {
		opts.Method = models.MethodLime
	}
	if opts.NumFeatures <= 0 {
		opts.NumFeatures = defaultFeatures
	}
	if opts.Seed == 0 {
		opts.Seed = defaultSeed
	}

	result := &models.ExplanationResult{Method: opts.Method, Errors: map[string]string{}}
	switch opts.Method {
	case models.MethodLime:
		result.Lime = e.runLime(ctx, text, opts, result.Errors)
	case models.MethodShap:
		result.Shap = e.runShap(text, opts, result.Errors)
	case models.MethodBoth:
		limeErrs := map[string]string{}
		shapErrs := map[string]string{}
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			result.Lime = e.runLime(ctx, text, opts, limeErrs)
		}()
		go func() {
			defer wg.Done()
			result.Shap = e.runShap(text, opts, shapErrs)
		}()
		wg.Wait()
		for method, reason := range limeErrs {
			result.Errors[method] = reason
		}
		for method, reason := range shapErrs {
			result.Errors[method] = reason
		}
	default:
		return nil, apperr.NewInvalidInput("unknown explanation method %q", opts.Method)
	}

	if len(result.Errors) == 0 {
		result.Errors = nil
	}
	return result, nil
}

func (e *Explainer) runLime(ctx context.Context, text string, opts Options, errs map[string]string) (out *models.Explanation) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("explanation method panicked", "method", models.MethodLime, "panic", r)
			errs[models.MethodLime] = fmt.Sprintf("panic: %v", r)
			out = nil
		}
	}()

	out, err := e.lime.explain(ctx, text, opts.NumFeatures, opts.Seed)
	if err != nil {
		slog.Warn("explanation method failed", "method", models.MethodLime, "error", err)
		errs[models.MethodLime] = err.Error()
		return nil
	}
	return out
}

func (e *Explainer) runShap(text string, opts Options, errs map[string]string) (out *models.Explanation) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("explanation method panicked", "method", models.MethodShap, "panic", r)
			errs[models.MethodShap] = fmt.Sprintf("panic: %v", r)
			out = nil
		}
	}()

	out, err := e.shap.explain(text, opts.NumFeatures)
	if err != nil {
		slog.Warn("explanation method failed", "method", models.MethodShap, "error", err)
		errs[models.MethodShap] = err.Error()
		return nil
	}
	return out
}

// Methods lists the available explanation methods for the capability
// endpoint. The listing is static.
func Methods() []models.MethodDescriptor {
	return []models.MethodDescriptor{
		{
			ID:          models.MethodLime,
			Name:        "LIME",
			Description: "Local Interpretable Model-agnostic Explanations: fits a local linear surrogate over token-masked perturbations of the document.",
		},
		{
			ID:          models.MethodShap,
			Name:        "SHAP",
			Description: "SHapley Additive exPlanations: exact additive per-token attributions relative to an empty-document baseline.",
		},
		{
			ID:          models.MethodBoth,
			Name:        "Both",
			Description: "Runs LIME and SHAP independently and returns both result sets.",
		},
	}
}

// sortFeatures orders token weights by descending magnitude, tokens as the
// tie break, and caps the list at limit.
func sortFeatures(features []models.TokenWeight, limit int) []models.TokenWeight {
	sort.Slice(features, func(i, j int) bool {
		mi, mj := math.Abs(features[i].Importance), math.Abs(features[j].Importance)
		if mi != mj {
			return mi > mj
		}
		return features[i].Token < features[j].Token
	})
	if limit > 0 && len(features) > limit {
		features = features[:limit]
	}
	return features
}

func buildExplanation(method, class string, prob, base float64, top []models.TokenWeight) *models.Explanation {
	positive := []string{}
	negative := []string{}
	for i := range top {
		top[i].Importance = round4(top[i].Importance)
		switch {
		case top[i].Importance > 0:
			positive = append(positive, top[i].Token)
		case top[i].Importance < 0:
			negative = append(negative, top[i].Token)
		}
	}
	return &models.Explanation{
		Method:         method,
		PredictedClass: class,
		Probability:    round4(prob),
		BaseValue:      round4(base),
		TopFeatures:    top,
		PositiveWords:  positive,
		NegativeWords:  negative,
	}
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
