package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/crimson-sun/apptimeline/internal/model"
	"github.com/crimson-sun/apptimeline/internal/output"
)

const (
	defaultTimeout = 10 * time.Second
	defaultBackoff = time.Second
	maxRetries     = 3
)

// Option configures a webhook Output.
type Option func(*Output)

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) Option {
	return func(o *Output) { o.headers = h }
}

// WithTimeout sets the HTTP client timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(o *Output) { o.client.Timeout = d }
}

// WithBackoff sets the delay before the first retry; it doubles per attempt.
// Default: 1s.
func WithBackoff(d time.Duration) Option {
	return func(o *Output) { o.backoff = d }
}

// Output POSTs the JSON summary of each finished run to an HTTP endpoint.
// Retries on 5xx with exponential backoff.
type Output struct {
	client  *http.Client
	url     string
	headers map[string]string
	backoff time.Duration
}

// New creates a webhook output targeting the given URL.
func New(url string, opts ...Option) *Output {
	o := &Output{
		client:  &http.Client{Timeout: defaultTimeout},
		url:     url,
		backoff: defaultBackoff,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Write posts the report summary.
func (o *Output) Write(ctx context.Context, report model.Report) error {
	body, err := json.Marshal(output.NewSummary(report))
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}
	if err := o.postWithRetry(ctx, body); err != nil {
		return err
	}
	slog.Info("posted run summary", "url", o.url, "run_id", report.RunID)
	return nil
}

func (o *Output) Close() error {
	return nil
}

// postWithRetry sends the body via HTTP POST with retry on 5xx.
func (o *Output) postWithRetry(ctx context.Context, body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(o.backoff << (attempt - 1)):
			case <-ctx.Done():
				return fmt.Errorf("webhook: %w", ctx.Err())
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range o.headers {
			req.Header.Set(k, v)
		}

		resp, err := o.client.Do(req)
		if err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		lastErr = fmt.Errorf("webhook: HTTP %d", resp.StatusCode)

		// Only retry on 5xx server errors.
		if resp.StatusCode < 500 {
			return lastErr
		}
		slog.Warn("webhook post failed, retrying", "status", resp.StatusCode, "attempt", attempt+1)
	}
	return lastErr
}
