package credibility

// getSourceIssuePhrases returns vague-attribution phrases that undermine
// sourcing.
func getSourceIssuePhrases() []string {
	return []string{
		"anonymous sources", "unnamed sources", "sources say",
		"someone told me", "they don't want you to know",
	}
}

// getSocialCalloutPhrases returns share-bait phrases common in viral posts.
func getSocialCalloutPhrases() []string {
	return []string{
		"share this", "like and share", "retweet", "spread the word",
	}
}
