package analyzer

import "testing"

func TestDetectLanguage(t *testing.T) {
	la := NewLanguageAnalyzer()

	tests := []struct {
		name     string
		text     string
		wantCode string
	}{
		{
			"english",
			"The committee said that the results of the study have been published, and they will share the findings with the public.",
			"en",
		},
		{
			"spanish",
			"El presidente dijo que los resultados del estudio fueron publicados para el beneficio de la gente.",
			"es",
		},
		{
			"french",
			"Le gouvernement a annoncé que les résultats seront publiés dans les prochains jours pour nous tous.",
			"fr",
		},
		{
			"german",
			"Die Regierung hat angekündigt, dass die Ergebnisse nicht vor dem nächsten Monat veröffentlicht werden.",
			"de",
		},
		{
			"chinese script",
			"这是一个关于新闻的测试文本",
			"zh",
		},
		{
			"russian script",
			"Это новость о выборах в стране",
			"ru",
		},
		{
			"korean script",
			"이것은 뉴스 기사에 대한 테스트입니다",
			"ko",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := la.Detect(Normalize(tt.text))
			if info.Code != tt.wantCode {
				t.Errorf("Detect() code = %q (confidence %.2f), want %q", info.Code, info.Confidence, tt.wantCode)
			}
			if info.Confidence <= 0 || info.Confidence > 1 {
				t.Errorf("Detect() confidence = %v, want in (0, 1]", info.Confidence)
			}
		})
	}
}

func TestDetectLanguageUnknown(t *testing.T) {
	la := NewLanguageAnalyzer()

	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"digits only", "12345 67890"},
		{"gibberish", "xyzzy plugh qwerty asdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := la.Detect(Normalize(tt.text))
			if info.Code != "unknown" {
				t.Errorf("Detect(%q) code = %q, want unknown", tt.text, info.Code)
			}
			if info.Confidence != 0 {
				t.Errorf("Detect(%q) confidence = %v, want 0", tt.text, info.Confidence)
			}
			if info.Supported {
				t.Errorf("Detect(%q) reported unknown language as supported", tt.text)
			}
		})
	}
}

func TestDetectLanguageNeverFails(t *testing.T) {
	la := NewLanguageAnalyzer()

	// Hostile inputs must still produce a usable answer.
	inputs := []string{
		"\x00\x01\x02",
		"!!!!!!",
		"ñ",
		"a",
	}

	for _, input := range inputs {
		info := la.Detect(Normalize(input))
		if info.Code == "" || info.Name == "" {
			t.Errorf("Detect(%q) returned empty code or name: %+v", input, info)
		}
	}
}

func TestDetectLanguageSupportedFlag(t *testing.T) {
	la := NewLanguageAnalyzer()

	english := la.Detect(Normalize("The results of the study have been published and they are clear."))
	if !english.Supported {
		t.Error("English should be supported by the default analyzer")
	}

	spanish := la.Detect(Normalize("El presidente dijo que los resultados del estudio fueron publicados para la gente."))
	if spanish.Supported {
		t.Error("Spanish should not be supported by the default analyzer")
	}
}

func TestDetectLanguageConfidenceReflectsEvidence(t *testing.T) {
	la := NewLanguageAnalyzer()

	strong := la.Detect(Normalize("The committee said that the results of the study have been published, and they will share the findings with the public."))
	weak := la.Detect(Normalize("zorp the blarg quux flibber wanzle dreep snork blat grum fizzle wib"))

	if strong.Confidence < 0.6 {
		t.Errorf("clear English prose confidence = %v, want >= 0.6", strong.Confidence)
	}
	if weak.Code == "en" && weak.Confidence >= strong.Confidence {
		t.Errorf("one stray function word scored %v, not below %v", weak.Confidence, strong.Confidence)
	}
}
