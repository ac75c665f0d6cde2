package service

import (
	"context"
	"log/slog"
	"time"
)

// Post is the fully rendered payload handed to the browser poster.
type Post struct {
	Platform   string
	Title      string
	Body       string
	ImagePaths []string
	Tags       []string
}

// BrowserPoster publishes one post. Internal retries and session
// re-authentication are its responsibility, opaque to the orchestrator.
type BrowserPoster interface {
	Publish(ctx context.Context, post *Post) error
}

// DryRunPoster logs instead of driving a browser. Default wiring until a
// real automation backend is plugged in.
type DryRunPoster struct{}

func NewDryRunPoster() *DryRunPoster {
	return &DryRunPoster{}
}

func (p *DryRunPoster) Publish(ctx context.Context, post *Post) error {
	// Simulate the time a real browser post takes.
	select {
	case <-time.After(500 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}

	slog.Info("dry-run publish",
		"platform", post.Platform,
		"title", post.Title,
		"images", len(post.ImagePaths),
		"tags", post.Tags,
	)
	return nil
}
