package app

import (
	"context"
	"fmt"
	"time"

	botpkg "github.com/kmoroz/LinkFixBot-Go/bot"
	"github.com/kmoroz/LinkFixBot-Go/bot/config"
	"github.com/kmoroz/LinkFixBot-Go/bot/fetch"
	logpkg "github.com/kmoroz/LinkFixBot-Go/bot/logger"
	"github.com/kmoroz/LinkFixBot-Go/bot/rewrite"
	"github.com/kmoroz/LinkFixBot-Go/bot/telegram"
	"github.com/kmoroz/LinkFixBot-Go/bot/telegram/handler"
	"github.com/kmoroz/LinkFixBot-Go/bot/worker"
	th "github.com/mymmrac/telego/telegohandler"
)

// App wires all application dependencies.
type App struct {
	Config   *config.Config
	Logger   *logpkg.Logger
	Pool     *worker.Pool
	Rules    *rewrite.Registry
	Telegram *telegram.Bot
	Fetcher  *fetch.Service
	Build    BuildInfo
}

// BuildInfo provides build-time metadata.
type BuildInfo struct {
	RuntimeVer string
	BinVersion string
	CommitSHA  string
	BuildTime  string
	BuildArch  string
}

// ruleFactories maps rewriter names to constructors, in default priority order.
var ruleFactories = []struct {
	name string
	new  func() *rewrite.Rule
}{
	{"twitter", rewrite.NewTwitter},
	{"reddit", rewrite.NewReddit},
	{"tiktok", rewrite.NewTikTok},
}

// New builds the application container.
func New(configPath string, build BuildInfo) (*App, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logpkg.New(conf.GetString("LogLevel"), conf.GetString("LogFormat"), conf.GetBool("LogSource"))
	if err != nil {
		return nil, err
	}

	rules, err := buildRegistry(conf, log)
	if err != nil {
		return nil, fmt.Errorf("init rewriters: %w", err)
	}

	pool := worker.New(conf.GetInt("WorkerPoolSize"))

	tele, err := telegram.New(conf, log)
	if err != nil {
		return nil, fmt.Errorf("init telegram: %w", err)
	}

	fetcher := fetch.New(fetch.Options{
		Timeout: time.Duration(conf.GetInt("FetchTimeout")) * time.Second,
		MaxSize: int64(conf.GetInt("MaxAttachmentSizeMB")) * 1024 * 1024,
		Logger:  log,
	})

	return &App{
		Config:   conf,
		Logger:   log,
		Pool:     pool,
		Rules:    rules,
		Telegram: tele,
		Fetcher:  fetcher,
		Build:    build,
	}, nil
}

// buildRegistry registers the enabled rewriters in the configured order.
func buildRegistry(conf *config.Config, log botpkg.Logger) (*rewrite.Registry, error) {
	factories := make(map[string]func() *rewrite.Rule, len(ruleFactories))
	defaultOrder := make([]string, 0, len(ruleFactories))
	for _, f := range ruleFactories {
		factories[f.name] = f.new
		defaultOrder = append(defaultOrder, f.name)
	}

	order := conf.GetStringList("RewriterOrder")
	if len(order) == 0 {
		order = defaultOrder
	}

	registry := rewrite.NewRegistry()
	for _, name := range order {
		factory, ok := factories[name]
		if !ok {
			log.Warn("unknown rewriter in RewriterOrder", "rewriter", name)
			continue
		}

		if cfg, ok := conf.GetRewriterConfig(name); ok {
			if _, hasKey := cfg["enabled"]; hasKey && !conf.GetRewriterBool(name, "enabled") {
				log.Info("rewriter disabled by config", "rewriter", name)
				continue
			}
		}

		rule := factory()
		rule.SetButtonLabel(conf.GetRewriterString(name, "button_label"))

		if err := registry.Register(rule); err != nil {
			return nil, err
		}
	}

	if len(registry.GetAll()) == 0 {
		log.Warn("no rewriters enabled; bot will pass all messages through")
	}
	return registry, nil
}

// Start resolves the bot identity and begins processing updates.
func (a *App) Start(ctx context.Context) error {
	meCtx, cancel := telegram.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	me, err := a.Telegram.GetMe(meCtx)
	if err != nil {
		return fmt.Errorf("getMe failed: %w", err)
	}
	a.Logger.Info("bot identity resolved", "username", me.Username, "id", me.ID)

	rateLimiter := rateLimiterFromConfig(a.Config)
	rateLimiter.SetLogger(a.Logger)

	rewriteHandler := &handler.RewriteHandler{
		Rules:       a.Rules,
		Fetcher:     a.Fetcher,
		Pool:        a.Pool,
		Logger:      a.Logger,
		RateLimiter: rateLimiter,
		UploadBot:   a.Telegram.UploadClient(),
		BotID:       me.ID,
	}
	rewriteHandler.Init(a.Config.GetInt("DedupCacheSize"))

	router := &handler.Router{Rewrite: rewriteHandler}

	return a.Telegram.Start(ctx, func(bh *th.BotHandler) {
		router.Register(bh, a.Telegram.Client())
	})
}

// Shutdown releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error

	if a.Telegram != nil {
		if err := a.Telegram.Stop(); err != nil {
			if a.Logger != nil {
				a.Logger.Error("failed to stop telegram handler", "error", err)
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("stop telegram handler: %w", err)
			}
		}
	}

	if a.Pool != nil {
		if err := a.Pool.Shutdown(ctx); err != nil {
			a.Pool.StopNow()
			if firstErr == nil {
				firstErr = fmt.Errorf("shutdown worker pool: %w", err)
			}
		}
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("close logger: %w", err)
			}
		}
	}

	return firstErr
}

func rateLimiterFromConfig(conf *config.Config) *telegram.RateLimiter {
	perSecond := conf.GetFloat64("RateLimitPerSecond")
	if perSecond <= 0 {
		perSecond = 1.0
	}
	burst := conf.GetInt("RateLimitBurst")
	if burst <= 0 {
		burst = 3
	}
	return telegram.NewRateLimiter(perSecond, burst)
}
