package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kmoroz/LinkFixBot-Go/bot"
)

var _ bot.Config = (*Config)(nil)

func TestLoadExampleINI(t *testing.T) {
	path := filepath.Join("..", "..", "config_example.ini")
	conf, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if conf.GetString("BOT_TOKEN") == "" {
		t.Fatalf("expected BOT_TOKEN to be present")
	}

	order := conf.GetStringList("RewriterOrder")
	if len(order) != 3 || order[0] != "twitter" {
		t.Fatalf("unexpected RewriterOrder: %v", order)
	}
}

func TestDefaults(t *testing.T) {
	tmpFile := writeTempConfig(t, "BOT_TOKEN = test_token\n")

	conf, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if got := conf.GetInt("DedupCacheSize"); got != 1000 {
		t.Errorf("expected DedupCacheSize=1000, got %d", got)
	}
	if got := conf.GetFloat64("RateLimitPerSecond"); got != 1.0 {
		t.Errorf("expected RateLimitPerSecond=1.0, got %v", got)
	}
	if got := conf.GetString("RewriterOrder"); got != "twitter,reddit,tiktok" {
		t.Errorf("unexpected default RewriterOrder: %s", got)
	}
}

func TestRewriterSections(t *testing.T) {
	tmpFile := writeTempConfig(t, `BOT_TOKEN = test_token
RewriterOrder = reddit,twitter

[rewriters.twitter]
button_label = Original post
enabled = true

[rewriters.tiktok]
enabled = false
`)

	conf, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if conf.GetString("BOT_TOKEN") != "test_token" {
		t.Errorf("expected BOT_TOKEN=test_token, got %s", conf.GetString("BOT_TOKEN"))
	}

	if _, ok := conf.GetRewriterConfig("twitter"); !ok {
		t.Fatalf("expected twitter rewriter section")
	}
	if !conf.GetRewriterBool("twitter", "enabled") {
		t.Errorf("expected twitter enabled")
	}
	if got := conf.GetRewriterString("twitter", "button_label"); got != "Original post" {
		t.Errorf("unexpected button_label: %s", got)
	}
	if conf.GetRewriterBool("tiktok", "enabled") {
		t.Errorf("expected tiktok disabled")
	}

	names := conf.RewriterNames()
	if len(names) != 2 || names[0] != "tiktok" || names[1] != "twitter" {
		t.Errorf("unexpected section names: %v", names)
	}

	order := conf.GetStringList("RewriterOrder")
	if len(order) != 2 || order[0] != "reddit" || order[1] != "twitter" {
		t.Errorf("unexpected order: %v", order)
	}
}

func TestGetStringListEmpty(t *testing.T) {
	tmpFile := writeTempConfig(t, "BOT_TOKEN = t\nRewriterOrder = \n")

	conf, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if got := conf.GetStringList("RewriterOrder"); got != nil {
		t.Errorf("expected nil list, got %v", got)
	}
}

func TestGetRewriterBoolValueTypes(t *testing.T) {
	conf := &Config{rewriters: map[string]RewriterConfig{
		"x": {
			"bool_true":  true,
			"str_true":   "true",
			"str_one":    "1",
			"str_other":  "yes",
			"int_zero":   0,
			"int_set":    2,
			"int64_zero": int64(0),
			"int64_set":  int64(2),
			"unhandled":  3.14,
		},
	}}

	tests := []struct {
		key  string
		want bool
	}{
		{"bool_true", true},
		{"str_true", true},
		{"str_one", true},
		{"str_other", false},
		{"int_zero", false},
		{"int_set", true},
		{"int64_zero", false},
		{"int64_set", true},
		{"unhandled", false},
		{"missing", false},
	}
	for _, tt := range tests {
		if got := conf.GetRewriterBool("x", tt.key); got != tt.want {
			t.Errorf("GetRewriterBool(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
