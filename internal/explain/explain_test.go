package explain

import (
	"context"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/zombar/newscred/internal/apperr"
	"github.com/zombar/newscred/internal/classifier"
	"github.com/zombar/newscred/internal/models"
)

func newTestExplainer(t *testing.T) (*Explainer, *classifier.Classifier) {
	t.Helper()
	clf, err := classifier.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	return New(clf), clf
}

func TestFitRidgeExactRecovery(t *testing.T) {
	// y = 3*x1 - 2*x2 + 1 over all binary combinations, no penalty: the
	// normal equations recover the generating coefficients exactly.
	x := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	y := []float64{1, -1, 4, 2}
	w := []float64{1, 1, 1, 1}

	coefs, intercept, err := fitRidge(x, y, w, 0)
	if err != nil {
		t.Fatalf("fitRidge() error = %v", err)
	}
	want := []float64{3, -2}
	for i := range want {
		if math.Abs(coefs[i]-want[i]) > 1e-9 {
			t.Errorf("coefs[%d] = %v, want %v", i, coefs[i], want[i])
		}
	}
	if math.Abs(intercept-1) > 1e-9 {
		t.Errorf("intercept = %v, want 1", intercept)
	}
}

func TestFitRidgeShrinks(t *testing.T) {
	x := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	y := []float64{1, -1, 4, 2}
	w := []float64{1, 1, 1, 1}

	coefs, _, err := fitRidge(x, y, w, 1)
	if err != nil {
		t.Fatalf("fitRidge() error = %v", err)
	}
	if math.Abs(coefs[0]) >= 3 {
		t.Errorf("coefs[0] = %v, want magnitude below the unpenalized 3", coefs[0])
	}
	if coefs[0] <= 0 || coefs[1] >= 0 {
		t.Errorf("penalty flipped coefficient signs: %v", coefs)
	}
}

func TestFitRidgeSingular(t *testing.T) {
	// Duplicate columns with no penalty cannot be solved.
	x := [][]float64{{1, 1}, {0, 0}, {1, 1}}
	y := []float64{1, 0, 1}
	w := []float64{1, 1, 1}

	if _, _, err := fitRidge(x, y, w, 0); err == nil {
		t.Fatal("fitRidge() solved a singular system")
	}
}

func TestSampleMasks(t *testing.T) {
	a := sampleMasks(rand.New(rand.NewSource(7)), 50, 6)
	b := sampleMasks(rand.New(rand.NewSource(7)), 50, 6)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different masks")
	}

	for j, v := range a[0] {
		if v != 1 {
			t.Fatalf("mask[0][%d] = %v, want the unperturbed document", j, v)
		}
	}
	for i := 1; i < len(a); i++ {
		inactive := 0
		for _, v := range a[i] {
			if v == 0 {
				inactive++
			}
		}
		if inactive < 1 || inactive > 6 {
			t.Fatalf("mask[%d] deactivates %d tokens, want 1..6", i, inactive)
		}
	}
}

func TestKernelWeights(t *testing.T) {
	masks := [][]float64{
		{1, 1, 1, 1},
		{1, 1, 0, 0},
		{0, 0, 0, 0},
	}
	w := kernelWeights(masks)
	if math.Abs(w[0]-1) > 1e-12 {
		t.Errorf("full mask weight = %v, want 1", w[0])
	}
	if !(w[0] > w[1] && w[1] > w[2]) {
		t.Errorf("weights %v not decreasing with distance", w)
	}
}

func TestLimeSingleToken(t *testing.T) {
	e, _ := newTestExplainer(t)

	out, err := e.lime.explain(context.Background(), "sheeple", 10, defaultSeed)
	if err != nil {
		t.Fatalf("explain() error = %v", err)
	}
	if out.PredictedClass != models.LabelFake {
		t.Errorf("PredictedClass = %q, want %q", out.PredictedClass, models.LabelFake)
	}
	if out.Probability != 0.9627 {
		t.Errorf("Probability = %v, want 0.9627", out.Probability)
	}
	if len(out.TopFeatures) != 1 || out.TopFeatures[0].Token != "sheeple" {
		t.Fatalf("TopFeatures = %v, want the single document token", out.TopFeatures)
	}
	if out.TopFeatures[0].Importance <= 0 {
		t.Errorf("Importance = %v, want > 0 toward the predicted class", out.TopFeatures[0].Importance)
	}
}

func TestLimeSigns(t *testing.T) {
	e, _ := newTestExplainer(t)

	out, err := e.lime.explain(context.Background(), "Officials said the sheeple hoax was real.", 10, defaultSeed)
	if err != nil {
		t.Fatalf("explain() error = %v", err)
	}
	if out.PredictedClass != models.LabelFake {
		t.Fatalf("PredictedClass = %q, want %q", out.PredictedClass, models.LabelFake)
	}

	importance := map[string]float64{}
	for _, f := range out.TopFeatures {
		importance[f.Token] = f.Importance
	}
	for _, tok := range []string{"sheeple", "hoax"} {
		if importance[tok] <= 0 {
			t.Errorf("importance[%s] = %v, want > 0 (supports the FAKE verdict)", tok, importance[tok])
		}
	}
	for _, tok := range []string{"official", "said"} {
		if importance[tok] >= 0 {
			t.Errorf("importance[%s] = %v, want < 0 (opposes the FAKE verdict)", tok, importance[tok])
		}
	}
}

func TestLimeReproducible(t *testing.T) {
	e, _ := newTestExplainer(t)
	text := "Officials said the sheeple hoax was real."

	a, err := e.lime.explain(context.Background(), text, 10, 99)
	if err != nil {
		t.Fatalf("explain() error = %v", err)
	}
	b, err := e.lime.explain(context.Background(), text, 10, 99)
	if err != nil {
		t.Fatalf("explain() error = %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different explanations")
	}
}

func TestLimeNoTokens(t *testing.T) {
	e, _ := newTestExplainer(t)

	if _, err := e.lime.explain(context.Background(), "Of the and with.", 10, defaultSeed); err == nil {
		t.Fatal("explain() succeeded on text with no surviving tokens")
	}
}

func TestShapExactAttributions(t *testing.T) {
	e, _ := newTestExplainer(t)

	out, err := e.shap.explain("Officials said the sheeple hoax was real.", 25)
	if err != nil {
		t.Fatalf("explain() error = %v", err)
	}
	if out.PredictedClass != models.LabelFake {
		t.Fatalf("PredictedClass = %q, want %q", out.PredictedClass, models.LabelFake)
	}
	if out.Probability != 0.957 {
		t.Errorf("Probability = %v, want 0.957", out.Probability)
	}
	if out.BaseValue != 0.05 {
		t.Errorf("BaseValue = %v, want 0.05", out.BaseValue)
	}

	want := []models.TokenWeight{
		{Token: "sheeple", Importance: 2.0662},
		{Token: "hoax", Importance: 1.6915},
		{Token: "official", Importance: -0.4638},
		{Token: "said", Importance: -0.4183},
		{Token: "real", Importance: 0.1773},
	}
	if !reflect.DeepEqual(out.TopFeatures, want) {
		t.Errorf("TopFeatures = %v, want %v", out.TopFeatures, want)
	}
	if !reflect.DeepEqual(out.PositiveWords, []string{"sheeple", "hoax", "real"}) {
		t.Errorf("PositiveWords = %v", out.PositiveWords)
	}
	if !reflect.DeepEqual(out.NegativeWords, []string{"official", "said"}) {
		t.Errorf("NegativeWords = %v", out.NegativeWords)
	}
}

func TestShapAdditivity(t *testing.T) {
	// Base value plus all contributions reconstructs the margin toward the
	// predicted class.
	e, clf := newTestExplainer(t)
	text := "Officials said the sheeple hoax was real."

	out, err := e.shap.explain(text, 100)
	if err != nil {
		t.Fatalf("explain() error = %v", err)
	}
	sum := out.BaseValue
	for _, f := range out.TopFeatures {
		sum += f.Importance
	}

	margin := clf.Decision(clf.Vectorize(clf.Preprocess(text)))
	if math.Abs(sum-(-margin)) > 1e-3 {
		t.Errorf("base + contributions = %v, want %v", sum, -margin)
	}
}

func TestShapUnknownTokensOnly(t *testing.T) {
	e, _ := newTestExplainer(t)

	out, err := e.shap.explain("The quick brown fox jumps over the lazy dog.", 10)
	if err != nil {
		t.Fatalf("explain() error = %v", err)
	}
	if len(out.TopFeatures) != 0 {
		t.Errorf("TopFeatures = %v, want empty for out-of-vocabulary text", out.TopFeatures)
	}
	if out.Probability != 0.5125 {
		t.Errorf("Probability = %v, want 0.5125", out.Probability)
	}
}

func TestExplainBothSurvivesLimeFailure(t *testing.T) {
	e, _ := newTestExplainer(t)

	// All tokens are stop words, so the perturbation method has nothing to
	// mask and fails; the attribution method still answers.
	result, err := e.Explain(context.Background(), "Of the and with.", Options{Method: models.MethodBoth})
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if result.Lime != nil {
		t.Error("Lime result present, want nil after failure")
	}
	if result.Shap == nil {
		t.Fatal("Shap result missing, want it unaffected by the lime failure")
	}
	if result.Errors[models.MethodLime] == "" {
		t.Error("Errors[lime] empty, want the failure reason")
	}
	if _, ok := result.Errors[models.MethodShap]; ok {
		t.Error("Errors[shap] present, want only the failed method flagged")
	}
}

func TestExplainBoth(t *testing.T) {
	e, _ := newTestExplainer(t)

	result, err := e.Explain(context.Background(), "Officials said the sheeple hoax was real.", Options{Method: models.MethodBoth})
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if result.Lime == nil || result.Shap == nil {
		t.Fatalf("both methods requested, got lime=%v shap=%v", result.Lime, result.Shap)
	}
	if result.Errors != nil {
		t.Errorf("Errors = %v, want nil", result.Errors)
	}
}

func TestExplainDefaults(t *testing.T) {
	e, _ := newTestExplainer(t)

	text := "Officials said the bank announced a statement published Tuesday according to Reuters data on percent rates."
	result, err := e.Explain(context.Background(), text, Options{})
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if result.Method != models.MethodLime {
		t.Errorf("Method = %q, want the lime default", result.Method)
	}
	if result.Lime == nil {
		t.Fatal("Lime result missing")
	}
	if len(result.Lime.TopFeatures) != defaultFeatures {
		t.Errorf("TopFeatures has %d entries, want the default cap %d", len(result.Lime.TopFeatures), defaultFeatures)
	}
}

func TestExplainUnknownMethod(t *testing.T) {
	e, _ := newTestExplainer(t)

	_, err := e.Explain(context.Background(), "anything", Options{Method: "magic"})
	if err == nil {
		t.Fatal("Explain() accepted an unknown method")
	}
	if !apperr.IsInvalidInput(err) {
		t.Errorf("error = %v, want invalid input", err)
	}
}

func TestExplainCanceledContext(t *testing.T) {
	e, _ := newTestExplainer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := e.Explain(ctx, "Officials said the sheeple hoax was real.", Options{Method: models.MethodLime})
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if result.Lime != nil {
		t.Error("Lime result present, want nil after cancellation")
	}
	if result.Errors[models.MethodLime] == "" {
		t.Error("Errors[lime] empty, want the cancellation reason")
	}
}

func TestMethods(t *testing.T) {
	methods := Methods()
	if len(methods) != 3 {
		t.Fatalf("Methods() returned %d entries, want 3", len(methods))
	}
	ids := map[string]bool{}
	for _, m := range methods {
		ids[m.ID] = true
		if m.Name == "" || m.Description == "" {
			t.Errorf("method %q has an empty name or description", m.ID)
		}
	}
	for _, id := range []string{models.MethodLime, models.MethodShap, models.MethodBoth} {
		if !ids[id] {
			t.Errorf("method %q missing from listing", id)
		}
	}
}
