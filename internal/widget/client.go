package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"chatrelay/internal/models"
)

// Client posts transcripts to the proxy.
type Client struct {
	httpClient *http.Client
}

// NewClient bounds every request by timeout so a hung proxy cannot leave the
// window waiting forever.
func NewClient(timeout time.Duration) *Client {
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// Timeout is the per-request limit.
func (c *Client) Timeout() time.Duration { return c.httpClient.Timeout }

// Send returns the raw proxy body on 2xx. Other statuses come back as
// *HTTPError and network failures as *TransportError.
func (c *Client) Send(ctx context.Context, endpoint string, messages []models.ChatMessage) ([]byte, error) {
	payload, err := json.Marshal(models.ChatRequest{Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("invalid worker URL %q: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var urlErr *url.Error
		timeout := errors.As(err, &urlErr) && urlErr.Timeout()
		return nil, &TransportError{Endpoint: endpoint, Timeout: timeout, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
