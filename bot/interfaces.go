package bot

import "context"

// Logger is the minimal logging abstraction used across modules.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Config provides typed access to configuration values.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetFloat64(key string) float64
}

// WorkerPool limits concurrency for background tasks.
type WorkerPool interface {
	Submit(task func()) error
	SubmitWait(task func() error) error
	SubmitWaitContext(ctx context.Context, task func() error) error
	Shutdown(ctx context.Context) error
	Size() int
}

// AttachmentFetcher retrieves attachment bytes by URL into memory. FetchAll
// resolves each attachment's URL via urlFor and fills in Data; it fails as a
// whole if any single fetch fails.
type AttachmentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	FetchAll(ctx context.Context, attachments []*Attachment, urlFor func(*Attachment) (string, error)) error
}
