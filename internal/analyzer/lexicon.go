package analyzer

// getPropagandaLexicons returns the phrase lists for each technique in the
// taxonomy. Matches are word-boundary, case-insensitive; the lists are a
// heuristic signal, not ground truth.
func getPropagandaLexicons() map[string][]string {
	return map[string][]string{
		"name_calling": {
			"radical", "terrorist", "thug", "communist", "socialist", "fascist",
			"snowflake", "libtard", "sheep", "nazi", "extremist", "cult",
		},
		"glittering_generalities": {
			"freedom", "patriotic", "family values", "fairness", "democracy",
			"rights", "truth", "justice", "love", "peace",
		},
		"transfer": {
			"experts say", "scientists found", "according to research",
			"studies show", "doctors recommend",
		},
		"testimonial": {
			"endorsed by", "supported by", "according to", "as stated by",
			"as mentioned by", "as shown by",
		},
		"plain_folks": {
			"common sense", "regular people", "ordinary citizens", "everyday",
			"working class", "main street", "real americans",
		},
		"card_stacking": {
			"what they don't want you to know", "what they're hiding",
			"the truth about", "what they won't tell you", "the real truth",
		},
		"bandwagon": {
			"everyone is", "people are saying", "trending", "going viral",
			"popular opinion", "the consensus is", "everybody knows",
		},
		"fear": {
			"warning", "danger", "threat", "terror", "alarming", "frightening",
			"scary", "beware", "urgent", "crisis", "emergency", "panic",
		},
		"black_and_white_fallacy": {
			"either", "or", "versus", "against", "with us or against us",
			"only choice", "no alternative", "black and white",
		},
		"exaggeration": {
			"best ever", "worst ever", "greatest", "perfect", "absolutely",
			"completely", "totally", "undoubtedly", "incredible",
		},
	}
}

// getClickbaitPhrases returns sensationalist phrases common in fabricated
// headlines. Matched as substrings of the lower-cased text, one point per
// phrase present.
func getClickbaitPhrases() []string {
	return []string{
		"you won't believe", "shocking", "mind blowing", "amazing",
		"unbelievable", "incredible", "won't believe your eyes",
		"shocking truth", "what happens next", "secret", "reveal",
		"exclusive", "the truth about", "they don't want you to know",
		"conspiracy",
	}
}

// getHedgingPhrases returns qualifiers that signal unverified claims.
func getHedgingPhrases() []string {
	return []string{
		"may", "might", "could", "allegedly", "reportedly", "some people say",
		"sources say", "it is claimed", "it is believed", "possibly", "perhaps",
	}
}

// getExaggerationPhrases returns absolute qualifiers that signal overstatement.
func getExaggerationPhrases() []string {
	return []string{
		"all", "none", "every", "always", "never", "everyone", "nobody",
		"definitely", "absolutely", "undoubtedly", "completely",
	}
}

// getPersonalPronouns returns first and second person pronouns, whose density
// signals direct-address framing.
func getPersonalPronouns() map[string]bool {
	words := []string{
		"i", "me", "my", "mine", "myself",
		"we", "us", "our", "ours", "ourselves",
		"you", "your", "yours", "yourself", "yourselves",
	}

	pronouns := make(map[string]bool)
	for _, word := range words {
		pronouns[word] = true
	}
	return pronouns
}

// getPositiveWords returns common positive sentiment words
func getPositiveWords() map[string]bool {
	words := []string{
		"good", "great", "excellent", "amazing", "wonderful", "fantastic", "best", "love", "loved", "loving",
		"beautiful", "perfect", "awesome", "brilliant", "outstanding", "superb", "exceptional", "incredible",
		"magnificent", "marvelous", "pleasant", "delightful", "enjoyable", "happy", "glad", "pleased",
		"satisfied", "terrific", "fabulous", "splendid", "impressive", "remarkable", "positive", "advantage",
		"benefit", "success", "successful", "win", "winning", "winner", "better", "improvement", "improved",
		"exciting", "excited", "enthusiasm", "enthusiastic", "optimistic", "hopeful", "promising", "favorable",
	}

	positiveWords := make(map[string]bool)
	for _, word := range words {
		positiveWords[word] = true
	}
	return positiveWords
}

// getNegativeWords returns common negative sentiment words
func getNegativeWords() map[string]bool {
	words := []string{
		"bad", "terrible", "awful", "horrible", "poor", "worst", "hate", "hated", "hating", "ugly", "disgusting",
		"disappointing", "disappointed", "disappointment", "fail", "failed", "failure", "wrong", "problem",
		"problems", "issue", "issues", "error", "errors", "difficult", "difficulty", "hard", "impossible",
		"negative", "unfortunate", "sad", "unhappy", "angry", "frustrated", "frustrating", "annoying", "annoyed",
		"concern", "concerned", "worried", "worry", "fear", "afraid", "scary", "dangerous", "risk", "threat",
		"damage", "damaged", "harm", "harmful", "worse", "loss", "lost", "losing", "loser", "decline", "declined",
	}

	negativeWords := make(map[string]bool)
	for _, word := range words {
		negativeWords[word] = true
	}
	return negativeWords
}

// getHonorifics returns titles that mark the following capitalized phrase as
// a person.
func getHonorifics() map[string]bool {
	words := []string{
		"mr", "mrs", "ms", "dr", "prof", "professor", "president", "senator",
		"governor", "mayor", "judge", "sir", "captain", "general", "rep",
		"representative", "secretary", "chancellor", "minister",
	}

	honorifics := make(map[string]bool)
	for _, word := range words {
		honorifics[word] = true
	}
	return honorifics
}

// getOrgSuffixes returns trailing words that mark a capitalized phrase as an
// organization.
func getOrgSuffixes() map[string]bool {
	words := []string{
		"inc", "corp", "corporation", "company", "ltd", "llc", "group",
		"association", "institute", "university", "college", "committee",
		"department", "agency", "ministry", "bank", "party", "council",
		"times", "post", "journal", "news", "network", "foundation",
		"organization", "administration", "bureau", "commission",
	}

	suffixes := make(map[string]bool)
	for _, word := range words {
		suffixes[word] = true
	}
	return suffixes
}

// getLocationPrefixes returns leading words common in place names.
func getLocationPrefixes() map[string]bool {
	words := []string{
		"north", "south", "east", "west", "new", "san", "los", "las", "fort",
		"lake", "mount", "saint", "st", "cape", "port",
	}

	prefixes := make(map[string]bool)
	for _, word := range words {
		prefixes[word] = true
	}
	return prefixes
}

// getKnownLocations returns a small gazetteer of places the suffix and
// prefix rules miss.
func getKnownLocations() map[string]bool {
	names := []string{
		"united states", "united kingdom", "america", "europe", "asia",
		"africa", "china", "russia", "india", "france", "germany", "brazil",
		"canada", "mexico", "london", "paris", "moscow", "beijing", "tokyo",
		"washington", "new york", "los angeles", "chicago", "texas",
		"california", "florida",
	}

	locations := make(map[string]bool)
	for _, name := range names {
		locations[name] = true
	}
	return locations
}

// getKnownOrgs returns a small gazetteer of organizations the suffix rule
// misses, including common acronyms.
func getKnownOrgs() map[string]bool {
	names := []string{
		"united nations", "white house", "congress", "senate", "pentagon",
		"supreme court", "facebook", "twitter", "google", "microsoft",
		"apple", "amazon", "cnn", "bbc", "reuters", "nato", "who", "fbi",
		"cia", "nasa", "fda", "cdc", "epa", "irs", "gop",
	}

	orgs := make(map[string]bool)
	for _, name := range names {
		orgs[name] = true
	}
	return orgs
}

// getSentenceStarters returns common words whose sentence-initial
// capitalization carries no entity signal.
func getSentenceStarters() map[string]bool {
	words := []string{
		"the", "a", "an", "this", "that", "these", "those", "it", "he",
		"she", "they", "we", "you", "i", "in", "on", "at", "but", "and",
		"or", "if", "when", "while", "after", "before", "however",
		"meanwhile", "although", "also", "there", "here", "now", "today",
		"yesterday", "tomorrow", "according", "as", "with", "for", "from",
		"by", "one", "two", "many", "some", "most", "more", "his", "her",
		"its", "our", "their", "my", "your", "what", "who", "why", "how",
		"where", "which", "no", "not", "yes", "so", "then", "once", "all",
		"every", "even", "just", "only", "still", "is", "are", "was",
		"were", "do", "does", "did", "can", "could", "will", "would",
		"should", "may", "might", "must", "have", "has", "had", "be",
		"been", "being", "to", "of", "later", "earlier", "recently",
		"finally", "instead", "perhaps", "maybe", "since", "because",
		"despite", "during", "until", "unless", "another", "each", "both",
	}

	starters := make(map[string]bool)
	for _, word := range words {
		starters[word] = true
	}
	return starters
}

// getMonths returns month names for date recognition.
func getMonths() map[string]bool {
	words := []string{
		"january", "february", "march", "april", "may", "june", "july",
		"august", "september", "october", "november", "december", "jan",
		"feb", "mar", "apr", "jun", "jul", "aug", "sep", "sept", "oct",
		"nov", "dec",
	}

	months := make(map[string]bool)
	for _, word := range words {
		months[word] = true
	}
	return months
}

// languageProfile holds the detection cues for one Latin-script language:
// distinctive high-frequency function words.
type languageProfile struct {
	code  string
	name  string
	words []string
}

// getLanguageProfiles returns the Latin-script language profiles. Non-Latin
// languages (ru, ar, zh, ja, ko, hi) are recognized by script instead.
func getLanguageProfiles() []languageProfile {
	return []languageProfile{
		{"en", "English", []string{
			"the", "and", "of", "to", "that", "with", "for", "was", "this",
			"have", "from", "they", "which", "been", "their",
		}},
		{"es", "Spanish", []string{
			"el", "la", "los", "las", "una", "que", "por", "para", "con",
			"del", "pero", "como", "muy", "sobre", "entre",
		}},
		{"fr", "French", []string{
			"le", "les", "des", "une", "est", "dans", "pour", "qui", "pas",
			"avec", "sur", "sont", "cette", "mais", "nous",
		}},
		{"de", "German", []string{
			"der", "die", "das", "und", "ist", "nicht", "mit", "ein", "eine",
			"auf", "sich", "auch", "werden", "wurde", "dem",
		}},
		{"it", "Italian", []string{
			"il", "gli", "che", "per", "con", "sono", "della", "questo",
			"anche", "nella", "delle", "essere", "come", "alla", "degli",
		}},
		{"pt", "Portuguese", []string{
			"os", "uma", "que", "com", "por", "para", "mais", "como",
			"foi", "pela", "sua", "dos", "das", "ele", "isso",
		}},
		{"nl", "Dutch", []string{
			"de", "het", "een", "van", "dat", "niet", "voor", "met", "zijn",
			"aan", "ook", "maar", "deze", "wordt", "naar",
		}},
	}
}

// getLanguageNames maps detector codes to display names, including the
// script-detected languages.
func getLanguageNames() map[string]string {
	return map[string]string{
		"en": "English",
		"es": "Spanish",
		"fr": "French",
		"de": "German",
		"it": "Italian",
		"pt": "Portuguese",
		"nl": "Dutch",
		"ru": "Russian",
		"ar": "Arabic",
		"zh": "Chinese",
		"ja": "Japanese",
		"ko": "Korean",
		"hi": "Hindi",
	}
}
