package classifier

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/zombar/newscred/internal/apperr"
	"github.com/zombar/newscred/internal/models"
)

func TestLoadDefault(t *testing.T) {
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if got := c.Version(); got != "tfidf-logreg-2024.3" {
		t.Errorf("Version() = %q, want %q", got, "tfidf-logreg-2024.3")
	}
	if got := c.Classes(); len(got) != 2 || got[0] != models.LabelFake || got[1] != models.LabelReal {
		t.Errorf("Classes() = %v, want [FAKE REAL]", got)
	}
	if got := c.PositiveClass(); got != models.LabelReal {
		t.Errorf("PositiveClass() = %q, want %q", got, models.LabelReal)
	}
}

func TestPredict(t *testing.T) {
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}

	tests := []struct {
		name      string
		text      string
		wantLabel string
		wantConf  float64
	}{
		{
			name:      "attributed wire copy",
			text:      "Officials said on Tuesday the central bank would hold rates steady, according to a statement published by Reuters.",
			wantLabel: models.LabelReal,
			wantConf:  0.9769,
		},
		{
			name:      "conspiracy copy",
			text:      "SHOCKING! The mainstream media is hiding the truth about this miracle cure. Wake up, sheeple!",
			wantLabel: models.LabelFake,
			wantConf:  0.9966,
		},
		{
			name:      "no vocabulary overlap",
			text:      "The quick brown fox jumps over the lazy dog.",
			wantLabel: models.LabelUncertain,
			wantConf:  0.5125,
		},
		{
			name:      "negated statement",
			text:      "This is not true.",
			wantLabel: models.LabelFake,
			wantConf:  0.8598,
		},
		{
			name:      "market report",
			text:      "The stock rose 5 percent in 2024.",
			wantLabel: models.LabelReal,
			wantConf:  0.8012,
		},
		{
			name:      "empty text",
			text:      "",
			wantLabel: models.LabelUncertain,
			wantConf:  0.5125,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Predict(tt.text)
			if got.Label != tt.wantLabel {
				t.Errorf("Predict() label = %q, want %q", got.Label, tt.wantLabel)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("Predict() confidence = %v, want %v", got.Confidence, tt.wantConf)
			}
			sum := got.Probabilities[models.LabelFake] + got.Probabilities[models.LabelReal]
			if math.Abs(sum-1) > 0.001 {
				t.Errorf("probabilities sum to %v, want 1", sum)
			}
		})
	}
}

func TestPredictSingleTerm(t *testing.T) {
	// A one-term document l2-normalizes to a unit feature, so the margin is
	// exactly the intercept plus that term's coefficient.
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}

	got := c.Predict("sheeple")
	if got.Label != models.LabelFake {
		t.Errorf("Predict(sheeple) label = %q, want %q", got.Label, models.LabelFake)
	}
	if got.Confidence != 0.9627 {
		t.Errorf("Predict(sheeple) confidence = %v, want 0.9627", got.Confidence)
	}
}

func TestVectorizeUnitNorm(t *testing.T) {
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}

	features := c.Vectorize([]string{"said", "official", "said", "percent"})
	if len(features) != 3 {
		t.Fatalf("Vectorize() produced %d features, want 3", len(features))
	}
	var norm float64
	for _, v := range features {
		norm += v * v
	}
	if math.Abs(norm-1) > 1e-9 {
		t.Errorf("feature vector squared norm = %v, want 1", norm)
	}
}

func TestVectorizeIgnoresUnknownTerms(t *testing.T) {
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if features := c.Vectorize([]string{"zyzzyva", "qwerty"}); len(features) != 0 {
		t.Errorf("Vectorize() = %v, want empty", features)
	}
}

func TestDecisionEmptyVector(t *testing.T) {
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if got := c.Decision(nil); got != c.Intercept() {
		t.Errorf("Decision(nil) = %v, want intercept %v", got, c.Intercept())
	}
}

func TestProbaTokensMatchesProba(t *testing.T) {
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}

	text := "Officials said the report was published Tuesday."
	direct := c.Proba(text)
	viaTokens := c.ProbaTokens(c.Preprocess(text))
	for _, class := range c.Classes() {
		if math.Abs(direct[class]-viaTokens[class]) > 1e-12 {
			t.Errorf("Proba[%s] = %v, ProbaTokens[%s] = %v", class, direct[class], class, viaTokens[class])
		}
	}
}

func TestCoefficients(t *testing.T) {
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}

	if w := c.Coefficient("said"); w <= 0 {
		t.Errorf("Coefficient(said) = %v, want > 0", w)
	}
	if w := c.Coefficient("hoax"); w >= 0 {
		t.Errorf("Coefficient(hoax) = %v, want < 0", w)
	}
	if w := c.Coefficient("zyzzyva"); w != 0 {
		t.Errorf("Coefficient(zyzzyva) = %v, want 0", w)
	}
	if _, ok := c.TermIndex("percent"); !ok {
		t.Error("TermIndex(percent) missing from vocabulary")
	}
	if _, ok := c.TermIndex("zyzzyva"); ok {
		t.Error("TermIndex(zyzzyva) unexpectedly present")
	}
}

func TestNewRejectsBadArtifacts(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"one class", `{"model_version":"v","classes":["FAKE"],"vocabulary":{"a":0},"idf":[1],"coefficients":[1],"intercept":0}`},
		{"empty vocabulary", `{"model_version":"v","classes":["FAKE","REAL"],"vocabulary":{},"idf":[],"coefficients":[],"intercept":0}`},
		{"idf length mismatch", `{"model_version":"v","classes":["FAKE","REAL"],"vocabulary":{"a":0},"idf":[1,2],"coefficients":[1],"intercept":0}`},
		{"coefficient length mismatch", `{"model_version":"v","classes":["FAKE","REAL"],"vocabulary":{"a":0},"idf":[1],"coefficients":[],"intercept":0}`},
		{"index out of range", `{"model_version":"v","classes":["FAKE","REAL"],"vocabulary":{"a":5},"idf":[1],"coefficients":[1],"intercept":0}`},
		{"duplicate index", `{"model_version":"v","classes":["FAKE","REAL"],"vocabulary":{"a":0,"b":0},"idf":[1,1],"coefficients":[1,1],"intercept":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]byte(tt.data))
			if err == nil {
				t.Fatal("New() accepted a bad artifact")
			}
			if !apperr.IsModelUnavailable(err) {
				t.Errorf("New() error = %v, want model unavailable", err)
			}
		})
	}
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, defaultModel, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Version() == "" {
		t.Error("Load() produced an empty model version")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("Load() of a missing file succeeded")
	}
	if !apperr.IsModelUnavailable(err) {
		t.Errorf("Load() error = %v, want model unavailable", err)
	}
}
