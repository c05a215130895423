package classifier

// getStopWords returns common English stop words
func getStopWords() map[string]bool {
	words := []string{
		"a", "about", "above", "after", "again", "against", "all", "am", "an", "and", "any", "are", "aren't",
		"as", "at", "be", "because", "been", "before", "being", "below", "between", "both", "but", "by",
		"can't", "cannot", "could", "couldn't", "did", "didn't", "do", "does", "doesn't", "doing", "don't",
		"down", "during", "each", "few", "for", "from", "further", "had", "hadn't", "has", "hasn't", "have",
		"haven't", "having", "he", "he'd", "he'll", "he's", "her", "here", "here's", "hers", "herself", "him",
		"himself", "his", "how", "how's", "i", "i'd", "i'll", "i'm", "i've", "if", "in", "into", "is", "isn't",
		"it", "it's", "its", "itself", "let's", "me", "more", "most", "mustn't", "my", "myself", "no", "nor",
		"not", "of", "off", "on", "once", "only", "or", "other", "ought", "our", "ours", "ourselves", "out",
		"over", "own", "same", "shan't", "she", "she'd", "she'll", "she's", "should", "shouldn't", "so", "some",
		"such", "than", "that", "that's", "the", "their", "theirs", "them", "themselves", "then", "there",
		"there's", "these", "they", "they'd", "they'll", "they're", "they've", "this", "those", "through", "to",
		"too", "under", "until", "up", "very", "was", "wasn't", "we", "we'd", "we'll", "we're", "we've", "were",
		"weren't", "what", "what's", "when", "when's", "where", "where's", "which", "while", "who", "who's",
		"whom", "why", "why's", "with", "won't", "would", "wouldn't", "you", "you'd", "you'll", "you're",
		"you've", "your", "yours", "yourself", "yourselves",
	}

	stopWords := make(map[string]bool)
	for _, word := range words {
		stopWords[word] = true
	}
	return stopWords
}

// getKeepWords returns tokens exempt from stop word removal. Negations and
// veracity markers carry classification signal that generic stop lists throw
// away.
func getKeepWords() map[string]bool {
	words := []string{
		"not", "no", "never", "none", "nobody", "nothing", "nowhere",
		"fake", "hoax", "lie", "conspiracy", "truth", "false", "real",
		"allegedly", "reportedly", "supposedly", "claim", "source",
	}

	keepWords := make(map[string]bool)
	for _, word := range words {
		keepWords[word] = true
	}
	return keepWords
}

// getNegationTokens returns the tokens that open a negation scope.
func getNegationTokens() map[string]bool {
	words := []string{"not", "no", "never", "none", "neither", "nor", "nothing"}

	negations := make(map[string]bool)
	for _, word := range words {
		negations[word] = true
	}
	return negations
}

// getIrregularLemmas returns irregular plural forms the suffix rules miss.
func getIrregularLemmas() map[string]string {
	return map[string]string{
		"children": "child",
		"men":      "man",
		"women":    "woman",
		"mice":     "mouse",
		"feet":     "foot",
		"teeth":    "tooth",
		"geese":    "goose",
		"lives":    "life",
		"wives":    "wife",
		"knives":   "knife",
	}
}
