package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/mutuals/pkg/cache"
	"github.com/matzehuels/mutuals/pkg/errors"
	"github.com/matzehuels/mutuals/pkg/membership"
)

// maxSnapshotBytes caps the body read by [HTTP].
const maxSnapshotBytes = 64 << 20

// HTTP fetches a JSON snapshot from an http:// or https:// URL. Server errors
// and 429 responses are retried with backoff; other non-2xx statuses fail
// immediately.
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP creates an HTTP source. A nil client uses a client with a 30s timeout.
func NewHTTP(url string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTP{url: url, client: client}
}

// Name implements Source.
func (h *HTTP) Name() string { return h.url }

// Load implements Source.
func (h *HTTP) Load(ctx context.Context) (membership.Snapshot, error) {
	var snap membership.Snapshot
	err := cache.RetryWithBackoff(ctx, func() error {
		s, err := h.fetch(ctx)
		if err != nil {
			return err
		}
		snap = s
		return nil
	})
	if err != nil {
		if errors.Is(err, errors.ErrCodeInvalidFormat) || errors.Is(err, errors.ErrCodeNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeSource, err, "fetch %s", h.url)
	}
	return snap, nil
}

func (h *HTTP) fetch(ctx context.Context) (membership.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, cache.Retryable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "snapshot %s: %s", h.url, resp.Status)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, cache.Retryable(fmt.Errorf("%s", resp.Status))
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%s", resp.Status)
	}

	s, err := membership.ReadSnapshot(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read snapshot %s", h.url)
	}
	return s, nil
}

// IsHTTPURL reports whether loc is an http:// or https:// URL.
func IsHTTPURL(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

var _ Source = (*HTTP)(nil)
