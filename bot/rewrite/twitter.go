package rewrite

import "regexp"

var twitterPattern = regexp.MustCompile(`https://(www\.)?(x|twitter)\.com/([a-zA-Z0-9_]+)/status/([0-9]+)`)

// NewTwitter creates the Twitter/X rewriter. Status links on x.com and
// twitter.com are pointed at fxtwitter.com.
func NewTwitter() *Rule {
	return &Rule{
		name:      "twitter",
		skipToken: "fxtwitter.com",
		sourceDomains: []string{
			"https://x.com",
			"https://twitter.com",
			"https://www.x.com",
			"https://www.twitter.com",
		},
		pattern:        twitterPattern,
		replacement:    "https://fxtwitter.com/${3}/status/${4}",
		buttonLabel:    "Open in X",
		deleteOriginal: true,
	}
}
