package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"adbridge/internal/domain"
	"adbridge/internal/infra"
)

// Client wraps the source platform's REST surface: downloading attachment
// bytes and posting summary comments back to the card. It is a thin,
// swappable I/O adapter with no publish logic.
type Client struct {
	baseURL    string
	apiKey     string
	apiToken   string
	httpClient *http.Client
	logger     infra.Logger
}

// Options configures the source-platform client.
type Options struct {
	BaseURL    string
	APIKey     string
	APIToken   string
	HTTPClient *http.Client
	Logger     infra.Logger
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		apiToken:   opts.APIToken,
		httpClient: httpClient,
		logger:     opts.Logger,
	}
}

// DownloadAttachment fetches the raw bytes of an attachment, adding the
// platform credentials when the attachment is hosted on the platform
// itself (IsUpload).
func (c *Client) DownloadAttachment(ctx context.Context, att domain.Attachment) ([]byte, error) {
	target := att.URL
	if att.IsUpload && c.apiKey != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target = fmt.Sprintf("%s%skey=%s&token=%s", target, sep, url.QueryEscape(c.apiKey), url.QueryEscape(c.apiToken))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("source: build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: download %s: %w", att.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("source: download %s: status %d", att.Name, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", att.Name, err)
	}
	return data, nil
}

// PostComment writes a human-readable summary back to the card. It is a
// fire-and-forget side channel: failures are logged, never returned.
func (c *Client) PostComment(ctx context.Context, cardID, text string) {
	if c.baseURL == "" {
		return
	}
	endpoint := fmt.Sprintf("%s/cards/%s/comments?key=%s&token=%s",
		c.baseURL, url.PathEscape(cardID), url.QueryEscape(c.apiKey), url.QueryEscape(c.apiToken))
	body := url.Values{"text": {text}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader([]byte(body)))
	if err != nil {
		c.logger.Warn().Err(err).Str("card_id", cardID).Msg("source: build comment request failed")
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("card_id", cardID).Msg("source: post comment failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("card_id", cardID).Msg("source: post comment rejected")
	}
}
