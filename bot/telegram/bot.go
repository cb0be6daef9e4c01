package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	botpkg "github.com/kmoroz/LinkFixBot-Go/bot"
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
)

// Bot wraps telego with application configuration.
type Bot struct {
	client  *telego.Bot
	upload  *telego.Bot
	config  botpkg.Config
	logger  botpkg.Logger
	handler *th.BotHandler
}

// New creates a new Telegram bot client.
func New(cfg botpkg.Config, logger botpkg.Logger) (*Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.GetString("BOT_TOKEN") == "" {
		return nil, fmt.Errorf("BOT_TOKEN required")
	}

	pollTransport := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	uploadTransport := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	pollClient := &http.Client{
		Timeout:   2 * time.Minute,
		Transport: pollTransport,
	}
	uploadClient := &http.Client{
		Timeout:   15 * time.Minute,
		Transport: uploadTransport,
	}

	options := []telego.BotOption{
		telego.WithHTTPClient(pollClient),
		telego.WithLogger(telegoLogger{logger: logger}),
	}
	if cfg.GetString("BotAPI") != "" {
		options = append(options, telego.WithAPIServer(cfg.GetString("BotAPI")))
	}
	if cfg.GetBool("BotDebug") {
		options = append(options, telego.WithDebugMode())
	}

	client, err := telego.NewBot(cfg.GetString("BOT_TOKEN"), options...)
	if err != nil {
		return nil, err
	}

	uploadOptions := []telego.BotOption{
		telego.WithHTTPClient(uploadClient),
		telego.WithLogger(telegoLogger{logger: logger}),
	}
	if cfg.GetString("BotAPI") != "" {
		uploadOptions = append(uploadOptions, telego.WithAPIServer(cfg.GetString("BotAPI")))
	}
	if cfg.GetBool("BotDebug") {
		uploadOptions = append(uploadOptions, telego.WithDebugMode())
	}
	upload, err := telego.NewBot(cfg.GetString("BOT_TOKEN"), uploadOptions...)
	if err != nil {
		return nil, err
	}

	return &Bot{client: client, upload: upload, config: cfg, logger: logger}, nil
}

// Start begins long polling and hands updates to the registered handlers.
// register is called once with the update handler before polling starts.
func (b *Bot) Start(ctx context.Context, register func(bh *th.BotHandler)) error {
	updates, err := b.client.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: 30,
	})
	if err != nil {
		return fmt.Errorf("start long polling: %w", err)
	}

	bh, err := th.NewBotHandler(b.client, updates)
	if err != nil {
		return fmt.Errorf("init bot handler: %w", err)
	}
	if register != nil {
		register(bh)
	}
	b.handler = bh

	go func() {
		if err := bh.Start(); err != nil {
			b.logger.Error("bot handler stopped", "error", err)
		}
	}()
	return nil
}

// Stop stops the update handler, waiting for in-flight handlers.
func (b *Bot) Stop() error {
	if b.handler == nil {
		return nil
	}
	return b.handler.Stop()
}

// Client exposes the underlying bot client.
func (b *Bot) Client() *telego.Bot {
	return b.client
}

// UploadClient exposes a dedicated client for media uploads.
func (b *Bot) UploadClient() *telego.Bot {
	if b.upload != nil {
		return b.upload
	}
	return b.client
}

// GetMe retrieves bot info.
func (b *Bot) GetMe(ctx context.Context) (*telego.User, error) {
	return b.client.GetMe(ctx)
}

type telegoLogger struct {
	logger botpkg.Logger
}

func (l telegoLogger) Debugf(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l telegoLogger) Errorf(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Error(fmt.Sprintf(format, args...))
}

// WithTimeout returns a context with timeout for Telegram requests.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}
