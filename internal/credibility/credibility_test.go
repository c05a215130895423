package credibility

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/zombar/newscred/internal/analyzer"
	"github.com/zombar/newscred/internal/models"
)

func TestScore(t *testing.T) {
	agg := New(DefaultConfig())

	tests := []struct {
		name       string
		label      string
		confidence float64
		propaganda float64
		want       int
	}{
		{"real high confidence", models.LabelReal, 0.9769, 0, 98},
		{"real with max penalty", models.LabelReal, 0.9769, 100, 78},
		{"fake high confidence", models.LabelFake, 0.9966, 0, 0},
		{"fake clamps at zero", models.LabelFake, 0.9966, 80, 0},
		{"uncertain midpoint", models.LabelUncertain, 0.5125, 0, 50},
		{"uncertain ignores confidence", models.LabelUncertain, 0.99, 0, 50},
		{"uncertain with penalty", models.LabelUncertain, 0.5125, 10, 48},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.Score(tt.label, tt.confidence, tt.propaganda); got != tt.want {
				t.Errorf("Score(%s, %v, %v) = %d, want %d", tt.label, tt.confidence, tt.propaganda, got, tt.want)
			}
		})
	}
}

func TestScoreBounds(t *testing.T) {
	agg := New(DefaultConfig())

	labels := []string{models.LabelReal, models.LabelFake, models.LabelUncertain}
	for _, label := range labels {
		for conf := 0.0; conf <= 1.0; conf += 0.25 {
			for prop := 0.0; prop <= 100; prop += 25 {
				got := agg.Score(label, conf, prop)
				if got < 0 || got > 100 {
					t.Fatalf("Score(%s, %v, %v) = %d, out of [0,100]", label, conf, prop, got)
				}
			}
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	agg := New(DefaultConfig())
	first := agg.Score(models.LabelReal, 0.87, 33)
	for i := 0; i < 5; i++ {
		if got := agg.Score(models.LabelReal, 0.87, 33); got != first {
			t.Fatalf("Score varied across calls: %d then %d", first, got)
		}
	}
}

func TestScorePenaltyCapped(t *testing.T) {
	agg := New(DefaultConfig())

	clean := agg.Score(models.LabelReal, 1, 0)
	saturated := agg.Score(models.LabelReal, 1, 100)
	if clean-saturated != 20 {
		t.Errorf("max penalty = %d points, want 20", clean-saturated)
	}
	if mid := agg.Score(models.LabelReal, 1, 50); mid < saturated {
		t.Errorf("Score at propaganda 50 = %d, below the saturated %d", mid, saturated)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credibility.yaml")
	if err := os.WriteFile(path, []byte("propaganda_penalty_cap: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.PropagandaPenaltyCap != 10 {
		t.Errorf("PropagandaPenaltyCap = %v, want the override 10", cfg.PropagandaPenaltyCap)
	}
	if cfg.PropagandaPenaltyRate != 0.2 {
		t.Errorf("PropagandaPenaltyRate = %v, want the default 0.2", cfg.PropagandaPenaltyRate)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig() of a missing file succeeded")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("propaganda_penalty_rate: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() accepted a negative tunable")
	}
}

func TestRationale(t *testing.T) {
	agg := New(DefaultConfig())

	tests := []struct {
		name   string
		result *models.AnalysisResult
		want   string
	}{
		{
			name: "real with low propaganda",
			result: &models.AnalysisResult{
				Label:      models.LabelReal,
				Confidence: 0.9769,
				Propaganda: &models.PropagandaInfo{Techniques: map[string]int{}, PropagandaScore: 3.2},
			},
			want: "The classifier leans REAL with 98% confidence; propaganda signals are low.",
		},
		{
			name: "fake with heavy propaganda",
			result: &models.AnalysisResult{
				Label:      models.LabelFake,
				Confidence: 0.9,
				Propaganda: &models.PropagandaInfo{Techniques: map[string]int{"fear": 5, "exaggeration": 2}, PropagandaScore: 64},
			},
			want: "The classifier leans FAKE with 90% confidence; propaganda signals are heavy (64/100), mostly fear.",
		},
		{
			name: "uncertain without propaganda detail",
			result: &models.AnalysisResult{
				Label:      models.LabelUncertain,
				Confidence: 0.5125,
			},
			want: "The classifier is uncertain (top probability 51%).",
		},
		{
			name: "readability and clickbait appended",
			result: &models.AnalysisResult{
				Label:        models.LabelReal,
				Confidence:   0.8,
				Propaganda:   &models.PropagandaInfo{Techniques: map[string]int{}, PropagandaScore: 5},
				Readability:  &models.ReadabilityScores{AverageGradeLevel: 8.4},
				WritingStyle: &models.WritingStyle{ClickbaitScore: 2},
			},
			want: "The classifier leans REAL with 80% confidence; propaganda signals are low; the text reads at grade level 8.4; clickbait phrasing is present.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.Rationale(tt.result); got != tt.want {
				t.Errorf("Rationale() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWarningSigns(t *testing.T) {
	agg := New(DefaultConfig())

	text := analyzer.Normalize("BUY NOW!!! SHARE THIS BEFORE THEY DELETE IT!!! sources say it works!!!")
	got := agg.WarningSigns(text, &models.AnalysisResult{})
	want := []string{
		"Excessive exclamation marks",
		"Heavy use of all-capital words",
		"Vague or anonymous sourcing",
		"Social media call-to-action language",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WarningSigns() = %v, want %v", got, want)
	}
}

func TestWarningSignsFromAnalysis(t *testing.T) {
	agg := New(DefaultConfig())

	text := analyzer.Normalize("Plain words here.")
	result := &models.AnalysisResult{
		WritingStyle: &models.WritingStyle{ClickbaitScore: 1},
		Propaganda:   &models.PropagandaInfo{PropagandaScore: 60},
	}
	got := agg.WarningSigns(text, result)
	want := []string{"Clickbait-style phrasing", "Dense propaganda technique matches"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WarningSigns() = %v, want %v", got, want)
	}
}

func TestWarningSignsQuietText(t *testing.T) {
	agg := New(DefaultConfig())

	text := analyzer.Normalize("The committee will meet on Tuesday to review the budget.")
	if got := agg.WarningSigns(text, &models.AnalysisResult{}); len(got) != 0 {
		t.Errorf("WarningSigns() = %v, want none", got)
	}

	// A lone acronym is not shouting.
	text = analyzer.Normalize("NASA launched the probe. It reached orbit.")
	if got := agg.WarningSigns(text, &models.AnalysisResult{}); len(got) != 0 {
		t.Errorf("WarningSigns() = %v, want none", got)
	}
}

func TestIsShouting(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"I", false},
		{"OK", true},
		{"IT!!!", true},
		{"NASA", true},
		{"NaSA", false},
		{"123", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isShouting(tt.word); got != tt.want {
			t.Errorf("isShouting(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}
