package rewrite

import "testing"

func TestRedditRewrite(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantText     string
		wantOriginal string
		wantMatch    bool
	}{
		{
			name:         "comment thread with www",
			text:         "https://www.reddit.com/r/cats/comments/abc123/title/",
			wantText:     "https://vxreddit.com/r/cats/comments/abc123/title/",
			wantOriginal: "https://www.reddit.com/r/cats/comments/abc123/title/",
			wantMatch:    true,
		},
		{
			name:         "comment thread without www",
			text:         "look https://reddit.com/r/golang/comments/xyz/nice_post/ wow",
			wantText:     "look https://vxreddit.com/r/golang/comments/xyz/nice_post/ wow",
			wantOriginal: "https://reddit.com/r/golang/comments/xyz/nice_post/",
			wantMatch:    true,
		},
		{
			name:         "short comments path",
			text:         "https://reddit.com/comments/abc123",
			wantText:     "https://vxreddit.com/comments/abc123",
			wantOriginal: "https://reddit.com/comments/abc123",
			wantMatch:    true,
		},
		{
			name:         "query string preserved",
			text:         "https://www.reddit.com/r/cats/comments/abc123/title/?share_id=1",
			wantText:     "https://vxreddit.com/r/cats/comments/abc123/title/?share_id=1",
			wantOriginal: "https://www.reddit.com/r/cats/comments/abc123/title/?share_id=1",
			wantMatch:    true,
		},
		{
			name:      "already rewritten",
			text:      "https://vxreddit.com/r/cats/comments/abc123/title/",
			wantMatch: false,
		},
		{
			name:      "subreddit front page",
			text:      "https://www.reddit.com/r/cats/",
			wantMatch: false,
		},
		{
			name:      "no reddit domain",
			text:      "just some text",
			wantMatch: false,
		},
	}

	rw := NewReddit()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := rw.Rewrite(tt.text)
			if ok != tt.wantMatch {
				t.Fatalf("Rewrite() match = %v, want %v", ok, tt.wantMatch)
			}
			if !ok {
				return
			}
			if res.NewText != tt.wantText {
				t.Errorf("NewText = %q, want %q", res.NewText, tt.wantText)
			}
			if res.OriginalURL != tt.wantOriginal {
				t.Errorf("OriginalURL = %q, want %q", res.OriginalURL, tt.wantOriginal)
			}
			if res.ButtonLabel != "Open in Reddit" {
				t.Errorf("ButtonLabel = %q", res.ButtonLabel)
			}
		})
	}
}

func TestRedditRewriteIdempotent(t *testing.T) {
	rw := NewReddit()
	res, ok := rw.Rewrite("https://www.reddit.com/r/cats/comments/abc123/title/")
	if !ok {
		t.Fatal("expected first rewrite to match")
	}
	if _, ok := rw.Rewrite(res.NewText); ok {
		t.Fatal("expected rewritten output to be skipped")
	}
}
