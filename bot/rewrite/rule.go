package rewrite

import (
	"regexp"
	"strings"
)

// Rule is a regex-based Rewriter shared by all platform rules.
type Rule struct {
	name           string
	skipToken      string
	sourceDomains  []string
	pattern        *regexp.Regexp
	replacement    string
	buttonLabel    string
	deleteOriginal bool
}

// Name implements Rewriter.
func (r *Rule) Name() string {
	return r.name
}

// ButtonLabel returns the label used for the link-back button.
func (r *Rule) ButtonLabel() string {
	return r.buttonLabel
}

// SetButtonLabel overrides the default button label. Meant to be called once
// during wiring, before the rule starts serving messages.
func (r *Rule) SetButtonLabel(label string) {
	if trimmed := strings.TrimSpace(label); trimmed != "" {
		r.buttonLabel = trimmed
	}
}

// Rewrite implements Rewriter.
func (r *Rule) Rewrite(text string) (*Result, bool) {
	if text == "" {
		return nil, false
	}

	// Already-rewritten text must not be rewritten again.
	if strings.Contains(text, r.skipToken) {
		return nil, false
	}

	containsSource := false
	for _, domain := range r.sourceDomains {
		if strings.Contains(text, domain) {
			containsSource = true
			break
		}
	}
	if !containsSource {
		return nil, false
	}

	newText := r.pattern.ReplaceAllString(text, r.replacement)
	if newText == text {
		// Domain present but the URL shape did not match.
		return nil, false
	}

	originalURL := r.pattern.FindString(text)
	if originalURL == "" {
		return nil, false
	}

	return &Result{
		NewText:        newText,
		OriginalURL:    originalURL,
		ButtonLabel:    r.buttonLabel,
		DeleteOriginal: r.deleteOriginal,
	}, true
}
