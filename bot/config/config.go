package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// RewriterConfig stores per-rewriter configuration as key-value pairs.
type RewriterConfig map[string]interface{}

// Config wraps viper and provides typed accessors.
type Config struct {
	v         *viper.Viper
	rewriters map[string]RewriterConfig
}

// Load reads a config file and prepares defaults. INI files get special
// handling so that [rewriters.*] sections are collected; other formats go
// straight through viper.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LINKFIXBOT")
	v.AutomaticEnv()

	setDefaults(v)

	if strings.EqualFold(filepath.Ext(path), ".ini") {
		cfg, err := loadINI(v, path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		c := &Config{
			v:         v,
			rewriters: make(map[string]RewriterConfig),
		}

		loadRewriterSections(cfg, c)
		return c, nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return &Config{
		v:         v,
		rewriters: make(map[string]RewriterConfig),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("BotAPI", "https://api.telegram.org")
	v.SetDefault("BotDebug", false)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFormat", "text")
	v.SetDefault("LogSource", false)
	v.SetDefault("RateLimitPerSecond", 1.0)
	v.SetDefault("RateLimitBurst", 3)
	v.SetDefault("FetchTimeout", 60)
	v.SetDefault("MaxAttachmentSizeMB", 50)
	v.SetDefault("WorkerPoolSize", 4)
	v.SetDefault("DedupCacheSize", 1000)
	v.SetDefault("RewriterOrder", "twitter,reddit,tiktok")
}

// GetString returns a string value.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt returns an int value.
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 returns a float64 value.
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool returns a bool value.
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringList splits a comma-separated value into trimmed entries.
func (c *Config) GetStringList(key string) []string {
	raw := c.v.GetString(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// GetRewriterConfig retrieves rewriter-specific configuration by name.
// Returns the configuration map and true if found, or nil and false if not found.
func (c *Config) GetRewriterConfig(name string) (RewriterConfig, bool) {
	cfg, ok := c.rewriters[name]
	return cfg, ok
}

// RewriterNames returns the configured rewriter section names.
func (c *Config) RewriterNames() []string {
	if len(c.rewriters) == 0 {
		return nil
	}
	nameList := make([]string, 0, len(c.rewriters))
	for name := range c.rewriters {
		nameList = append(nameList, name)
	}
	sort.Strings(nameList)
	return nameList
}

// GetRewriterString returns a string value from rewriter configuration.
// Returns empty string if the section or key is not found.
func (c *Config) GetRewriterString(rewriter, key string) string {
	cfg, ok := c.rewriters[rewriter]
	if !ok {
		return ""
	}
	val, ok := cfg[key]
	if !ok {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", val)
}

// GetRewriterInt returns an int value from rewriter configuration.
// Returns 0 if the section or key is not found, or the value is not an int.
func (c *Config) GetRewriterInt(rewriter, key string) int {
	cfg, ok := c.rewriters[rewriter]
	if !ok {
		return 0
	}
	val, ok := cfg[key]
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case string:
		num, _ := strconv.Atoi(v)
		return num
	default:
		return 0
	}
}

// GetRewriterBool returns a bool value from rewriter configuration.
// Returns false if the section or key is not found, or the value is not a bool.
func (c *Config) GetRewriterBool(rewriter, key string) bool {
	cfg, ok := c.rewriters[rewriter]
	if !ok {
		return false
	}
	val, ok := cfg[key]
	if !ok {
		return false
	}
	switch v := val.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true") || v == "1"
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return false
	}
}

func loadINI(v *viper.Viper, path string) (*ini.File, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	for _, key := range cfg.Section("").Keys() {
		v.Set(key.Name(), key.Value())
	}

	return cfg, nil
}

func loadRewriterSections(cfg *ini.File, c *Config) {
	const sectionPrefix = "rewriters."

	for _, section := range cfg.Sections() {
		sectionName := section.Name()
		if sectionName == "" || sectionName == "DEFAULT" {
			continue
		}

		if strings.HasPrefix(sectionName, sectionPrefix) {
			name := strings.TrimPrefix(sectionName, sectionPrefix)
			rewriterCfg := make(RewriterConfig)

			for _, key := range section.Keys() {
				rewriterCfg[key.Name()] = key.Value()
			}

			c.rewriters[name] = rewriterCfg
		}
	}
}
