package analyzer

import (
	"regexp"
	"strings"

	"github.com/zombar/newscred/internal/models"
)

// Entity categories.
const (
	EntityPerson       = "PERSON"
	EntityOrganization = "ORGANIZATION"
	EntityLocation     = "LOCATION"
	EntityDate         = "DATE"
	EntityMisc         = "MISC"
)

var (
	entityPhrasePattern  = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+(?:(?:of|the|and)\s+)?[A-Z][a-z]+)*\b`)
	entityAcronymPattern = regexp.MustCompile(`\b[A-Z]{2,6}\b`)

	entityDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{4}\b`),
		regexp.MustCompile(`\b\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4}\b`),
	}
)

// EntityAnalyzer tags capitalized phrases with coarse entity categories using
// honorifics, organizational suffixes, prepositions and a small gazetteer.
// It reports how many distinct entities of each category the text names.
type EntityAnalyzer struct {
	honorifics       map[string]bool
	orgSuffixes      map[string]bool
	locationPrefixes map[string]bool
	knownLocations   map[string]bool
	knownOrgs        map[string]bool
	starters         map[string]bool
	months           map[string]bool
	prepositions     map[string]bool
}

func NewEntityAnalyzer() *EntityAnalyzer {
	return &EntityAnalyzer{
		honorifics:       getHonorifics(),
		orgSuffixes:      getOrgSuffixes(),
		locationPrefixes: getLocationPrefixes(),
		knownLocations:   getKnownLocations(),
		knownOrgs:        getKnownOrgs(),
		starters:         getSentenceStarters(),
		months:           getMonths(),
		prepositions: map[string]bool{
			"in": true, "at": true, "from": true, "near": true,
			"to": true, "toward": true, "towards": true, "into": true,
		},
	}
}

func (ea *EntityAnalyzer) Name() string {
	return "entities"
}

func (ea *EntityAnalyzer) Analyze(text *NormalizedText) (Partial, error) {
	return entitiesPartial(ea.Extract(text)), nil
}

type entitiesPartial map[string]int

func (p entitiesPartial) Apply(result *models.AnalysisResult) {
	result.Entities = map[string]int(p)
}

// Extract returns the count of distinct entities per category.
func (ea *EntityAnalyzer) Extract(text *NormalizedText) map[string]int {
	found := make(map[string]map[string]bool)
	add := func(category, surface string) {
		if found[category] == nil {
			found[category] = make(map[string]bool)
		}
		found[category][strings.ToLower(surface)] = true
	}

	for _, loc := range entityPhrasePattern.FindAllStringIndex(text.Original, -1) {
		phrase := text.Original[loc[0]:loc[1]]
		prev := precedingWord(text.Original, loc[0])
		category, surface, ok := ea.classify(phrase, prev, atSentenceStart(text.Original, loc[0]))
		if ok {
			add(category, surface)
		}
	}

	// Acronyms are only trusted when the gazetteer knows them, so shouting
	// text does not masquerade as organizations.
	for _, acronym := range entityAcronymPattern.FindAllString(text.Original, -1) {
		lower := strings.ToLower(acronym)
		switch {
		case ea.knownOrgs[lower]:
			add(EntityOrganization, acronym)
		case ea.knownLocations[lower]:
			add(EntityLocation, acronym)
		}
	}

	for _, pattern := range entityDatePatterns {
		for _, match := range pattern.FindAllString(text.Original, -1) {
			add(EntityDate, match)
		}
	}

	counts := make(map[string]int, len(found))
	for category, surfaces := range found {
		counts[category] = len(surfaces)
	}
	return counts
}

// classify assigns a category to one capitalized phrase. The reported surface
// may differ from the match when a leading article is stripped. ok is false
// for sentence-initial capitalizations of ordinary words.
func (ea *EntityAnalyzer) classify(phrase, prev string, sentenceStart bool) (string, string, bool) {
	words := strings.Fields(phrase)
	if len(words) > 1 && (words[0] == "The" || words[0] == "A" || words[0] == "An") {
		words = words[1:]
		phrase = strings.Join(words, " ")
	}

	lower := strings.ToLower(phrase)
	first := strings.ToLower(words[0])
	last := strings.ToLower(words[len(words)-1])
	prevLower := strings.ToLower(strings.Trim(prev, ".,;:!?\"'()"))

	switch {
	case ea.knownLocations[lower]:
		return EntityLocation, phrase, true
	case ea.knownOrgs[lower]:
		return EntityOrganization, phrase, true
	case ea.months[first]:
		return EntityDate, phrase, true
	case ea.honorifics[prevLower], len(words) > 1 && ea.honorifics[first]:
		return EntityPerson, phrase, true
	case ea.orgSuffixes[last], ea.orgSuffixes[first]:
		return EntityOrganization, phrase, true
	case ea.prepositions[prevLower]:
		return EntityLocation, phrase, true
	case len(words) > 1 && ea.locationPrefixes[first]:
		return EntityLocation, phrase, true
	case len(words) >= 2:
		return EntityPerson, phrase, true
	case ea.honorifics[lower]:
		// A bare title modifies the phrase that follows it.
		return "", "", false
	case sentenceStart && ea.starters[lower]:
		return "", "", false
	default:
		return EntityMisc, phrase, true
	}
}

// precedingWord returns the whitespace-delimited word immediately before the
// byte offset, or "" at the start of the text.
func precedingWord(text string, offset int) string {
	end := offset
	for end > 0 && (text[end-1] == ' ' || text[end-1] == '\t' || text[end-1] == '\n' || text[end-1] == '\r') {
		end--
	}
	start := end
	for start > 0 && text[start-1] != ' ' && text[start-1] != '\t' && text[start-1] != '\n' && text[start-1] != '\r' {
		start--
	}
	return text[start:end]
}

// atSentenceStart reports whether only whitespace, quotes or a sentence
// terminator precede the byte offset.
func atSentenceStart(text string, offset int) bool {
	for i := offset - 1; i >= 0; i-- {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '"' || c == '\'' || c == '(':
			continue
		case c == '.' || c == '!' || c == '?' || c == '\n' || c == '\r':
			return true
		default:
			return false
		}
	}
	return true
}
