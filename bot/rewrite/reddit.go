package rewrite

import "regexp"

var redditPattern = regexp.MustCompile(`https://(www\.)?reddit\.com((?:/[^\s]*)?/comments/[^\s]*)`)

// NewReddit creates the Reddit rewriter. Comment-thread links on reddit.com
// are pointed at vxreddit.com; other reddit URLs are left alone.
func NewReddit() *Rule {
	return &Rule{
		name:      "reddit",
		skipToken: "vxreddit.com",
		sourceDomains: []string{
			"https://reddit.com",
			"https://www.reddit.com",
		},
		pattern:        redditPattern,
		replacement:    "https://vxreddit.com${2}",
		buttonLabel:    "Open in Reddit",
		deleteOriginal: true,
	}
}
