// Package fetch downloads attachment bytes into memory so they can be
// re-attached to a reposted message. Nothing is written to disk.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/kmoroz/LinkFixBot-Go/bot"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
)

// ErrTooLarge is returned when an attachment exceeds the configured size cap.
var ErrTooLarge = errors.New("attachment too large")

// Service provides resilient in-memory downloads of attachment URLs.
type Service struct {
	retry   *retryablehttp.Client
	breaker *gobreaker.CircuitBreaker
	maxSize int64
	logger  bot.Logger
}

// Options configures the fetch service.
type Options struct {
	Timeout time.Duration
	MaxSize int64
	Logger  bot.Logger
}

// New creates a fetch service with retry and circuit breaker.
func New(opts Options) *Service {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = nil
	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}

	settings := gobreaker.Settings{
		Name:        "attachment-fetch",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	}
	if opts.Logger != nil {
		log := opts.Logger
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			log.Warn("fetch circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		}
	}

	return &Service{
		retry:   client,
		breaker: gobreaker.NewCircuitBreaker(settings),
		maxSize: opts.MaxSize,
		logger:  opts.Logger,
	}
}

// Fetch downloads the URL and returns its bytes.
func (s *Service) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("fetch url missing")
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.fetchOnce(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (s *Service) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.retry.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	if s.maxSize > 0 && resp.ContentLength > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	reader := io.Reader(resp.Body)
	if s.maxSize > 0 {
		reader = io.LimitReader(resp.Body, s.maxSize+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, s.maxSize)
	}

	return data, nil
}

// FetchAll downloads every attachment concurrently, filling in Data.
// It fails as a whole if any single fetch fails.
func (s *Service) FetchAll(ctx context.Context, attachments []*bot.Attachment, urlFor func(*bot.Attachment) (string, error)) error {
	if len(attachments) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, att := range attachments {
		att := att
		g.Go(func() error {
			url, err := urlFor(att)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", att.FileID, err)
			}
			data, err := s.Fetch(ctx, url)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", att.FileID, err)
			}
			att.Data = data
			return nil
		})
	}

	return g.Wait()
}
