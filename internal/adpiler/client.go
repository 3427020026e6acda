package adpiler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"adbridge/internal/infra"
)

// ErrMissingToken indicates that the client was configured without credentials.
var ErrMissingToken = errors.New("adpiler: api token is required")

// RetryPolicy bounds the retry loop for one logical API call.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}

// DefaultRetryPolicy matches the platform's observed tolerance: four total
// attempts, 400ms base delay doubled per attempt, up to 200ms of jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 4, BaseDelay: 400 * time.Millisecond, Jitter: 200 * time.Millisecond}
}

// APIError is a non-retryable platform rejection. Status and the raw body
// are preserved for diagnosis.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("adpiler: status %d: %s", e.Status, strings.TrimSpace(e.Body))
}

// Options configures the AdPiler API client.
type Options struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     *infra.Logger
	Retry      RetryPolicy
	// Sleep is swapped out in tests; defaults to time.Sleep.
	Sleep func(time.Duration)
	// Rand drives backoff jitter; defaults to a time-seeded source.
	Rand *rand.Rand
}

// Client performs authenticated HTTP calls against the AdPiler API,
// retrying transient failures with exponential backoff.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *infra.Logger
	retry      RetryPolicy
	sleep      func(time.Duration)
	rand       *rand.Rand
}

// Result is a decoded API response. Fields is nil when the platform
// returned a non-JSON body; Raw always carries the body text.
type Result struct {
	Fields map[string]any
	Raw    string
}

// ID extracts the created entity id from the response, tolerating both
// string and numeric encodings.
func (r Result) ID() string {
	v, ok := r.Fields["id"]
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case string:
		return id
	case float64:
		if id == math.Trunc(id) {
			return fmt.Sprintf("%.0f", id)
		}
		return fmt.Sprintf("%v", id)
	default:
		return fmt.Sprintf("%v", id)
	}
}

// String extracts a string field from the response, or "" when absent.
func (r Result) String(key string) string {
	if v, ok := r.Fields[key].(string); ok {
		return v
	}
	return ""
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, ErrMissingToken
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	retry := opts.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryPolicy()
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      strings.TrimSpace(opts.Token),
		httpClient: httpClient,
		logger:     logger,
		retry:      retry,
		sleep:      sleep,
		rand:       rnd,
	}, nil
}

// PostMultipart sends a multipart form to the given API path.
func (c *Client) PostMultipart(ctx context.Context, path string, form *Form) (Result, error) {
	body, contentType, err := form.encode()
	if err != nil {
		return Result{}, fmt.Errorf("adpiler: encode form: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, body, contentType)
}

// GetJSON issues a GET against the given API path.
func (c *Client) GetJSON(ctx context.Context, path string) (Result, error) {
	return c.do(ctx, http.MethodGet, path, nil, "")
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string) (Result, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.backoff(attempt)
			c.logger.Warn().
				Str("path", path).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("adpiler: retrying request")
			c.sleep(delay)
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return Result{}, fmt.Errorf("adpiler: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("adpiler: %s %s: %w", method, path, err)
			continue
		}
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("adpiler: read response: %w", err)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = &APIError{Status: resp.StatusCode, Body: string(raw)}
			continue
		}
		if resp.StatusCode >= 400 {
			return Result{}, &APIError{Status: resp.StatusCode, Body: string(raw)}
		}

		result := Result{Raw: string(raw)}
		if len(raw) > 0 {
			var fields map[string]any
			if err := json.Unmarshal(raw, &fields); err == nil {
				result.Fields = fields
			}
		}
		return result, nil
	}
	return Result{}, lastErr
}

// backoff computes the delay before the given attempt (attempt >= 2):
// base * 2^(attempt-2) plus jitter.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.retry.BaseDelay << (attempt - 2)
	if c.retry.Jitter > 0 {
		delay += time.Duration(c.rand.Int63n(int64(c.retry.Jitter)))
	}
	return delay
}
