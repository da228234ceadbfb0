// Package relay forwards chat-completion requests to the upstream API with
// the proxy's credential attached.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"chatrelay/internal/models"
)

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	URL                 string
	Model               string
	MaxCompletionTokens int
}

var ErrInvalidPayload = errors.New("request body must be a JSON object")

// maxUpstreamBody caps every upstream body, success or error. A larger body is
// reported as too large rather than relayed truncated.
const maxUpstreamBody = 8 << 20

// BuildUpstreamRequest wraps the caller's messages in an upstream
// chat-completion request. The messages value is copied as raw JSON; nothing
// else from the payload is forwarded.
func BuildUpstreamRequest(ctx context.Context, opts Options, apiKey string, payload []byte) (*http.Request, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		payload = []byte("{}")
	}
	if !gjson.ValidBytes(payload) || !gjson.ParseBytes(payload).IsObject() {
		return nil, ErrInvalidPayload
	}

	body := []byte("{}")
	body, err := sjson.SetBytes(body, "model", opts.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to set model: %w", err)
	}

	if messages := gjson.GetBytes(payload, "messages"); messages.Exists() {
		body, err = sjson.SetRawBytes(body, "messages", []byte(messages.Raw))
		if err != nil {
			return nil, fmt.Errorf("failed to set messages: %w", err)
		}
	}

	body, err = sjson.SetBytes(body, "max_completion_tokens", opts.MaxCompletionTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to set max_completion_tokens: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

// Response is what the HTTP layer writes back, status and body as-is.
type Response struct {
	Status int
	Body   []byte
}

type Relayer struct {
	opts   Options
	apiKey string
	doer   Doer
}

func New(opts Options, apiKey string, doer Doer) *Relayer {
	return &Relayer{opts: opts, apiKey: apiKey, doer: doer}
}

// Relay performs one upstream round trip. It never returns an error: every
// failure is folded into a JSON error body with the matching status.
func (r *Relayer) Relay(ctx context.Context, payload []byte) Response {
	if r.apiKey == "" {
		return errorResponse(http.StatusInternalServerError, models.RelayError{
			Error: "OPENAI_API_KEY is not configured on the proxy",
		})
	}

	req, err := BuildUpstreamRequest(ctx, r.opts, r.apiKey, payload)
	if err != nil {
		if errors.Is(err, ErrInvalidPayload) {
			return errorResponse(http.StatusBadRequest, models.RelayError{Error: err.Error()})
		}
		return errorResponse(http.StatusInternalServerError, models.RelayError{Error: err.Error()})
	}

	resp, err := r.doer.Do(req)
	if err != nil {
		log.Printf("upstream request failed: %v", err)
		return errorResponse(http.StatusBadGateway, models.RelayError{
			Error:   "Upstream request failed",
			Details: err.Error(),
		})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody+1))
	if err != nil {
		log.Printf("failed to read upstream response: %v", err)
		return errorResponse(http.StatusBadGateway, models.RelayError{
			Error:   "Upstream request failed",
			Status:  resp.StatusCode,
			Details: err.Error(),
		})
	}
	if len(body) > maxUpstreamBody {
		log.Printf("upstream response exceeds %d bytes (status %d)", maxUpstreamBody, resp.StatusCode)
		return errorResponse(http.StatusBadGateway, models.RelayError{
			Error:   "Upstream response too large",
			Status:  resp.StatusCode,
			Details: fmt.Sprintf("body exceeds %d bytes", maxUpstreamBody),
		})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("upstream returned %d", resp.StatusCode)
		return errorResponse(http.StatusBadGateway, models.RelayError{
			Error:   "OpenAI API error",
			Status:  resp.StatusCode,
			Details: string(body),
		})
	}

	if !gjson.ValidBytes(body) {
		return errorResponse(http.StatusBadGateway, models.RelayError{
			Error:   "Invalid upstream response",
			Status:  resp.StatusCode,
			Details: string(body),
		})
	}

	return Response{Status: http.StatusOK, Body: body}
}

func errorResponse(status int, e models.RelayError) Response {
	body, _ := json.Marshal(e)
	return Response{Status: status, Body: body}
}
