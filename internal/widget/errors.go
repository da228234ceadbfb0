package widget

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnconfigured = errors.New("the chat endpoint is not configured; set the worker URL before sending messages")
	ErrBusy         = errors.New("a message is already being sent")
)

// HTTPError is a non-2xx answer from the proxy.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("Worker request failed: %d %s", e.Status, strings.TrimSpace(e.Body))
}

// TransportError means the proxy could not be reached at all. Its message
// lists the usual causes instead of the raw network error.
type TransportError struct {
	Endpoint string
	Timeout  bool
	Err      error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("The chat proxy at %s did not answer in time. It may be overloaded or stuck; try again shortly.", e.Endpoint)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Could not reach the chat proxy at %s. Likely causes:\n", e.Endpoint)
	b.WriteString("  • the proxy is not deployed or not running\n")
	b.WriteString("  • the worker URL is wrong (check `chat config show`)\n")
	b.WriteString("  • the request was blocked by a firewall, proxy or CORS policy\n")
	if strings.HasPrefix(e.Endpoint, "file:") {
		b.WriteString("  • the endpoint points at a local file; use the deployed http(s) URL\n")
	}
	fmt.Fprintf(&b, "(%v)", e.Err)
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }
