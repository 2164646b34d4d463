// Package httpclient provides the retrying HTTP client shared by the loaders.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// UserAgent is sent with every request.
const UserAgent = "slmap (+https://maps.secondlife.com)"

// maximum number of body bytes written to the log
const maxLoggedBody = 512

// Options configure New.
type Options struct {
	RetryMax int
	Timeout  time.Duration
}

// New returns a retrying client which logs through slog.
func New(opts Options) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = opts.RetryMax
	if opts.Timeout > 0 {
		c.HTTPClient.Timeout = opts.Timeout
	}
	c.Logger = slog.Default()
	c.ResponseLogHook = logResponse
	return c
}

// Get issues a GET request with the slmap user agent.
func Get(ctx context.Context, c *retryablehttp.Client, url string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	return c.Do(req)
}

// logResponse is a callback for retryablehttp.
// HTTP errors are logged with WARN and include the start of the body.
// Other responses are only logged when DEBUG is enabled.
func logResponse(_ retryablehttp.Logger, r *http.Response) {
	isHTTPError := r.StatusCode >= 400
	isDebug := slog.Default().Enabled(context.Background(), slog.LevelDebug)
	if !isHTTPError && !isDebug {
		return
	}
	level := slog.LevelDebug
	if isHTTPError {
		level = slog.LevelWarn
	}
	body, err := peekBody(r)
	if err != nil {
		slog.Error("Failed to read response body", "error", err)
	}
	slog.Log(
		context.Background(),
		level,
		"HTTP response",
		"method", r.Request.Method,
		"url", r.Request.URL,
		"status", statusText(r),
		"body", body,
	)
}

// peekBody returns the start of the response body and leaves the body readable.
func peekBody(r *http.Response) (string, error) {
	if r.Body == nil {
		return "", nil
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(b))
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "...", nil
	}
	return string(b), nil
}

func statusText(r *http.Response) string {
	return fmt.Sprintf("%d %s", r.StatusCode, http.StatusText(r.StatusCode))
}
