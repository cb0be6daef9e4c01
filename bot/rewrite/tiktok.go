package rewrite

import "regexp"

var tiktokPattern = regexp.MustCompile(`https://(www\.)?tiktok\.com/(@[A-Za-z0-9_.]+/video/[0-9]+[^\s]*)`)

// NewTikTok creates the TikTok rewriter. Video links on tiktok.com are
// pointed at tnktok.com, keeping the www prefix when present.
func NewTikTok() *Rule {
	return &Rule{
		name:      "tiktok",
		skipToken: "tnktok.com",
		sourceDomains: []string{
			"https://tiktok.com",
			"https://www.tiktok.com",
		},
		pattern:        tiktokPattern,
		replacement:    "https://${1}tnktok.com/${2}",
		buttonLabel:    "Open in TikTok",
		deleteOriginal: true,
	}
}
