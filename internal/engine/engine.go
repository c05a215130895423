package engine

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zombar/newscred/internal/analyzer"
	"github.com/zombar/newscred/internal/apperr"
	"github.com/zombar/newscred/internal/classifier"
	"github.com/zombar/newscred/internal/credibility"
	"github.com/zombar/newscred/internal/explain"
	"github.com/zombar/newscred/internal/models"
)

// minTextRunes rejects inputs too short to carry any signal.
const minTextRunes = 50

// Engine runs the whole pipeline for one request: shared normalization, the
// fanned-out analyzer stages, the classifier verdict, credibility
// aggregation and optional explanations.
type Engine struct {
	registry   *analyzer.Registry
	language   *analyzer.LanguageAnalyzer
	clf        *classifier.Classifier
	explainer  *explain.Explainer
	aggregator *credibility.Aggregator
}

// New wires the pipeline around a loaded classifier.
func New(clf *classifier.Classifier, agg *credibility.Aggregator) *Engine {
	return &Engine{
		registry:   analyzer.DefaultRegistry(),
		language:   analyzer.NewLanguageAnalyzer(),
		clf:        clf,
		explainer:  explain.New(clf),
		aggregator: agg,
	}
}

// Analyze runs one request through the pipeline. Analyzer stage failures
// degrade their fields and are reported in FieldErrors; only invalid input
// aborts the request.
func (e *Engine) Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResult, error) {
	if err := validateText(req.Text); err != nil {
		return nil, err
	}
	if req.Options.Explain {
		if err := validateMethod(req.Options.ExplanationMethod); err != nil {
			return nil, err
		}
	}

	text := analyzer.Normalize(req.Text)
	result := &models.AnalysisResult{
		Timestamp:  time.Now().UTC(),
		SourceText: req.Text,
	}

	if failures := e.registry.RunAll(text, result); len(failures) > 0 {
		result.FieldErrors = failures
	}

	prediction := e.clf.Predict(req.Text)
	result.Label = prediction.Label
	result.Confidence = prediction.Confidence

	// The propaganda score feeds the credibility penalty even when the
	// caller did not ask for the detailed fields.
	var propaganda float64
	if result.Propaganda != nil {
		propaganda = result.Propaganda.PropagandaScore
	}
	result.CredibilityScore = e.aggregator.Score(result.Label, result.Confidence, propaganda)
	result.Rationale = e.aggregator.Rationale(result)
	result.WarningSigns = e.aggregator.WarningSigns(text, result)

	if req.Options.Explain {
		explanation, err := e.explainer.Explain(ctx, req.Text, explain.Options{
			Method:      req.Options.ExplanationMethod,
			NumFeatures: req.Options.NumFeatures,
			Seed:        req.Options.Seed,
		})
		if err != nil {
			return nil, err
		}
		result.Explanation = explanation
	}

	if !req.Options.Detailed {
		result.Readability = nil
		result.Entities = nil
		result.Uniqueness = nil
		result.Propaganda = nil
	}
	return result, nil
}

// DetectLanguage exposes the language stage on its own. Unlike Analyze it
// accepts any non-blank text; a couple of words are enough to ask about.
func (e *Engine) DetectLanguage(text string) (*models.LanguageInfo, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.NewInvalidInput("text is required")
	}
	info := e.language.Detect(analyzer.Normalize(text))
	return &info, nil
}

// Explain runs the explanation methods without the rest of the pipeline.
func (e *Engine) Explain(ctx context.Context, text string, opts explain.Options) (*models.ExplanationResult, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}
	return e.explainer.Explain(ctx, text, opts)
}

// Methods lists the available explanation methods.
func (e *Engine) Methods() []models.MethodDescriptor {
	return explain.Methods()
}

func validateText(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return apperr.NewInvalidInput("text is required")
	}
	if utf8.RuneCountInString(trimmed) < minTextRunes {
		return apperr.NewInvalidInput("text must be at least %d characters", minTextRunes)
	}
	return nil
}

func validateMethod(method string) error {
	switch method {
	case "", models.MethodLime, models.MethodShap, models.MethodBoth:
		return nil
	}
	return apperr.NewInvalidInput("unknown explanation method %q", method)
}
