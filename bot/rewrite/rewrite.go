// Package rewrite implements the link rewrite rules: each rule maps one
// platform's URL shape to a preview-friendly mirror domain.
package rewrite

// Result is the outcome of a successful rewrite.
type Result struct {
	NewText        string
	OriginalURL    string
	ButtonLabel    string
	DeleteOriginal bool
}

// Rewriter inspects message text and either produces a rewrite or declines.
type Rewriter interface {
	// Name returns the rewriter's unique identifier.
	Name() string

	// Rewrite returns the rewrite result and true when the text contains a
	// matching link, or nil and false when the text should be left alone.
	// Text that already contains the mirror domain is always left alone.
	Rewrite(text string) (*Result, bool)
}
