package models

import "time"

// Labels the classifier can assign to a text.
const (
	LabelReal      = "REAL"
	LabelFake      = "FAKE"
	LabelUncertain = "UNCERTAIN"
)

// Collection names for the two result sinks.
const (
	CollectionHistory = "history"
	CollectionReports = "reports"
)

// Explanation method identifiers.
const (
	MethodLime = "lime"
	MethodShap = "shap"
	MethodBoth = "both"
)

// AnalysisRequest is the immutable input to one analysis run.
type AnalysisRequest struct {
	Text    string         `json:"text"`
	Options RequestOptions `json:"options"`
}

// RequestOptions selects the optional stages of an analysis.
type RequestOptions struct {
	Detailed          bool   `json:"detailed"`           // include readability/entities/uniqueness/propaganda
	SaveReport        bool   `json:"save_report"`        // persist a full report and return its id
	Explain           bool   `json:"explain"`            // attach a feature-attribution explanation
	ExplanationMethod string `json:"explanation_method"` // lime, shap, both
	NumFeatures       int    `json:"num_features"`       // top tokens returned per explanation
	Seed              int64  `json:"seed,omitempty"`     // perturbation sampling seed, 0 means default
}

// AnalysisResult is the central entity: one credibility assessment of one text.
// History and report rows store this same shape.
type AnalysisResult struct {
	ID               string  `json:"id,omitempty"`      // assigned at persistence time
	Label            string  `json:"label"`             // REAL, FAKE, UNCERTAIN
	Confidence       float64 `json:"confidence"`        // probability mass on Label, 0..1
	CredibilityScore int     `json:"credibility_score"` // derived, 0..100

	Language *LanguageInfo `json:"language,omitempty"`

	// Detailed-only fields. Nil means "not requested" unless the field also
	// appears in FieldErrors, which means the analyzer failed.
	Readability  *ReadabilityScores `json:"readability,omitempty"`
	Entities     map[string]int     `json:"entities,omitempty"`
	Uniqueness   *UniquenessInfo    `json:"uniqueness,omitempty"`
	Propaganda   *PropagandaInfo    `json:"propaganda,omitempty"`
	TextStats    *TextStats         `json:"text_stats,omitempty"`
	WritingStyle *WritingStyle      `json:"writing_style,omitempty"`

	WarningSigns []string `json:"warning_signs,omitempty"`
	Rationale    string   `json:"rationale,omitempty"`

	Explanation *ExplanationResult `json:"explanation,omitempty"`

	// FieldErrors maps a degraded field name to the failure reason. A field
	// listed here was never computed; its absence is not a verified zero.
	FieldErrors map[string]string `json:"field_errors,omitempty"`

	Timestamp  time.Time `json:"timestamp"`
	SourceText string    `json:"source_text"`

	ReportID      string `json:"report_id,omitempty"`      // set when save_report was requested
	ReviewerNotes string `json:"reviewer_notes,omitempty"` // LLM-generated, reports only, appended asynchronously
}

// LanguageInfo is the language detector output.
type LanguageInfo struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"` // 0..1
	Supported  bool    `json:"supported"`  // classifier artifact covers this language
}

// ReadabilityScores holds the standard reading-difficulty indices.
type ReadabilityScores struct {
	FleschReadingEase  float64 `json:"flesch_reading_ease"`
	FleschKincaidGrade float64 `json:"flesch_kincaid_grade"`
	GunningFog         float64 `json:"gunning_fog"`
	SMOGIndex          float64 `json:"smog_index"`
	ColemanLiau        float64 `json:"coleman_liau_index"`
	AutomatedIndex     float64 `json:"automated_readability_index"`
	AverageGradeLevel  float64 `json:"average_grade_level"`
}

// UniquenessInfo fingerprints a text for duplicate detection.
type UniquenessInfo struct {
	LexicalDiversity float64 `json:"lexical_diversity"` // unique/total tokens, 0..1
	ContentHash      string  `json:"content_hash"`      // stable hash of normalized text
}

// PropagandaInfo aggregates rhetorical-technique hits.
type PropagandaInfo struct {
	Techniques      map[string]int `json:"techniques"`       // technique name -> hit count
	PropagandaScore float64        `json:"propaganda_score"` // 0..100, heuristic
}

// TextStats holds surface statistics of the raw text.
type TextStats struct {
	WordCount         int     `json:"word_count"`
	SentenceCount     int     `json:"sentence_count"`
	AvgWordLength     float64 `json:"avg_word_length"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	ExclamationCount  int     `json:"exclamation_count"`
	QuestionCount     int     `json:"question_count"`
	CapitalizedRatio  float64 `json:"capitalized_ratio"` // fraction of ALL-CAPS words
	PunctuationRatio  float64 `json:"punctuation_ratio"` // punctuation chars per word
	PersonalPronouns  int     `json:"personal_pronouns"`
}

// WritingStyle summarizes rhetorical habits of the author.
type WritingStyle struct {
	HedgingCount      int     `json:"hedging_count"`      // "allegedly", "sources say", ...
	ExaggerationCount int     `json:"exaggeration_count"` // "always", "undoubtedly", ...
	ClickbaitScore    int     `json:"clickbait_score"`    // clickbait phrases present
	Sentiment         string  `json:"sentiment"`          // positive, negative, neutral
	SentimentScore    float64 `json:"sentiment_score"`    // -1.0 to 1.0
}

// TokenWeight is one token's signed importance toward the predicted class.
type TokenWeight struct {
	Token      string  `json:"token"`
	Importance float64 `json:"importance"`
}

// Explanation is the common output shape of one explanation method.
type Explanation struct {
	Method         string        `json:"method"`
	PredictedClass string        `json:"predicted_class"`
	Probability    float64       `json:"probability"`
	BaseValue      float64       `json:"base_value,omitempty"` // attribution baseline, shap only
	TopFeatures    []TokenWeight `json:"top_features"`
	PositiveWords  []string      `json:"positive_words"`
	NegativeWords  []string      `json:"negative_words"`
}

// ExplanationResult bundles the requested method results. With method "both",
// one method failing leaves the other intact and records the error here.
type ExplanationResult struct {
	Method string            `json:"method"`
	Lime   *Explanation      `json:"lime,omitempty"`
	Shap   *Explanation      `json:"shap,omitempty"`
	Errors map[string]string `json:"errors,omitempty"` // method -> failure reason
}

// MethodDescriptor describes one explanation method for the capability listing.
type MethodDescriptor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
