package widget

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"chatrelay/internal/models"
)

// Bubble selects how a message is drawn.
type Bubble string

const (
	BubbleUser      Bubble = "user"
	BubbleAssistant Bubble = "assistant"
	BubbleLoading   Bubble = "loading"
	BubbleError     Bubble = "error"
)

// Handle identifies a drawn bubble so it can be removed later.
type Handle int

// View is the surface the controller draws on.
type View interface {
	AppendMessage(bubble Bubble, text string) Handle
	Remove(h Handle)
	ClearInput()
	SetInputEnabled(enabled bool)
	Focus()
}

type State int

const (
	StateIdle State = iota
	StateAwaiting
)

func (s State) String() string {
	if s == StateAwaiting {
		return "awaiting"
	}
	return "idle"
}

type endpointResolver interface {
	Resolve(ctx context.Context) (string, bool)
}

type sender interface {
	Send(ctx context.Context, endpoint string, messages []models.ChatMessage) ([]byte, error)
}

// A sender with a per-request limit lends it to endpoint resolution.
type limitedSender interface {
	Timeout() time.Duration
}

// TranscriptDelta describes what one submission changed. Appended holds the
// messages added to the session; Error holds the text of the error bubble, if
// one was shown. Error bubbles are never added to the session.
type TranscriptDelta struct {
	Appended []models.ChatMessage
	Error    string
}

// Controller runs the submit cycle for one chat window. At most one request is
// in flight; Idle -> Awaiting on a non-empty submission, back to Idle when the
// request settles regardless of outcome.
type Controller struct {
	session  *Session
	resolver endpointResolver
	client   sender
	view     View

	resolveTimeout time.Duration

	mu    sync.Mutex
	state State
}

func NewController(session *Session, resolver endpointResolver, client sender, view View) *Controller {
	c := &Controller{
		session:  session,
		resolver: resolver,
		client:   client,
		view:     view,
	}
	if ls, ok := client.(limitedSender); ok {
		c.resolveTimeout = ls.Timeout()
	}
	return c
}

func (c *Controller) Session() *Session { return c.session }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// HandleSubmit processes one line of user input. Empty input is a no-op.
// The returned error is ErrBusy or the failure that was shown as an error
// bubble; either way the controller is Idle again afterwards unless busy.
func (c *Controller) HandleSubmit(ctx context.Context, input string) (TranscriptDelta, error) {
	var delta TranscriptDelta

	content := strings.TrimSpace(input)
	if content == "" {
		return delta, nil
	}

	c.mu.Lock()
	if c.state == StateAwaiting {
		c.mu.Unlock()
		return delta, ErrBusy
	}
	c.state = StateAwaiting
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		c.view.SetInputEnabled(true)
		c.view.Focus()
	}()

	user := models.ChatMessage{Role: models.RoleUser, Content: content}
	c.session.Append(user)
	c.view.AppendMessage(BubbleUser, content)
	delta.Appended = append(delta.Appended, user)

	c.view.ClearInput()
	c.view.SetInputEnabled(false)

	loading := c.view.AppendMessage(BubbleLoading, "...")

	reply, err := c.exchange(ctx)
	c.view.Remove(loading)

	if err != nil {
		log.Printf("session %s: %v", c.session.ID, err)
		delta.Error = "Error: " + err.Error()
		c.view.AppendMessage(BubbleError, delta.Error)
		return delta, err
	}

	assistant := models.ChatMessage{Role: models.RoleAssistant, Content: reply}
	c.session.Append(assistant)
	c.view.AppendMessage(BubbleAssistant, reply)
	delta.Appended = append(delta.Appended, assistant)

	return delta, nil
}

func (c *Controller) exchange(ctx context.Context) (string, error) {
	endpoint, ok := c.resolve(ctx)
	if !ok {
		return "", ErrUnconfigured
	}

	body, err := c.client.Send(ctx, endpoint, c.session.Messages())
	if err != nil {
		return "", err
	}
	return ExtractReply(body), nil
}

// resolve bounds endpoint lookup so a slow host page cannot hold the window in
// Awaiting. The request itself gets its own budget afterwards.
func (c *Controller) resolve(ctx context.Context) (string, bool) {
	if c.resolveTimeout <= 0 {
		return c.resolver.Resolve(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, c.resolveTimeout)
	defer cancel()
	return c.resolver.Resolve(ctx)
}
