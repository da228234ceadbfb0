// Package terminal draws the chat window on a terminal.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"chatrelay/internal/widget"
)

// Color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	clearLine   = "\r\033[2K"
	spinnerTick = 80 * time.Millisecond
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type bubbleStyle struct {
	avatar string
	label  string
	color  string
}

var styles = map[widget.Bubble]bubbleStyle{
	widget.BubbleUser:      {avatar: "🧑", label: "You", color: colorGreen},
	widget.BubbleAssistant: {avatar: "🤖", label: "Advisor", color: colorBlue},
	widget.BubbleError:     {avatar: "⚠️", label: "Advisor", color: colorRed},
	widget.BubbleLoading:   {avatar: "🤖", label: "Advisor", color: colorCyan},
}

type spinner struct {
	stop chan struct{}
	done chan struct{}
}

// View implements widget.View. Messages are bubbles with an avatar, a label
// and the time they were drawn; assistant text is rendered as markdown when
// writing to a terminal.
type View struct {
	out      io.Writer
	color    bool
	renderer *glamour.TermRenderer
	now      func() time.Time

	mu           sync.Mutex
	next         widget.Handle
	spinners     map[widget.Handle]*spinner
	inputEnabled bool
}

// NewView draws on f, using colors, a spinner and markdown rendering only if
// f is a terminal.
func NewView(f *os.File) *View {
	v := NewPlainView(f)
	if !term.IsTerminal(int(f.Fd())) {
		return v
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width < 40 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-10),
	)
	if err == nil {
		v.renderer = renderer
	}
	v.color = true
	return v
}

// NewPlainView writes uncolored text, one line per placeholder, to w.
func NewPlainView(w io.Writer) *View {
	return &View{
		out:          w,
		now:          time.Now,
		spinners:     make(map[widget.Handle]*spinner),
		inputEnabled: true,
	}
}

func (v *View) PrintWelcome(title, endpoint string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fmt.Fprintf(v.out, "%s%s╔════════════════════════════════════════╗%s\n", v.c(colorBold), v.c(colorCyan), v.c(colorReset))
	fmt.Fprintf(v.out, "%s%s║ %-38s ║%s\n", v.c(colorBold), v.c(colorCyan), title, v.c(colorReset))
	fmt.Fprintf(v.out, "%s%s╚════════════════════════════════════════╝%s\n", v.c(colorBold), v.c(colorCyan), v.c(colorReset))
	if endpoint != "" {
		fmt.Fprintf(v.out, "%sProxy: %s%s\n", v.c(colorGray), endpoint, v.c(colorReset))
	}
	fmt.Fprintf(v.out, "%sType your question, or /exit to quit%s\n", v.c(colorGray), v.c(colorReset))
}

func (v *View) AppendMessage(bubble widget.Bubble, text string) widget.Handle {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.next++
	h := v.next
	style, ok := styles[bubble]
	if !ok {
		style = styles[widget.BubbleAssistant]
	}

	if bubble == widget.BubbleLoading {
		if v.color {
			v.spinners[h] = v.startSpinner(style)
		} else {
			fmt.Fprintf(v.out, "%s %s is typing %s\n", style.avatar, style.label, text)
		}
		return h
	}

	if bubble == widget.BubbleAssistant && v.renderer != nil {
		if rendered, err := v.renderer.Render(text); err == nil {
			text = strings.Trim(rendered, "\n")
		}
	}

	stamp := v.now().Format("15:04")
	fmt.Fprintf(v.out, "\n%s┌─ %s %s · %s%s\n", v.c(style.color), style.avatar, style.label, stamp, v.c(colorReset))
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(v.out, "%s│%s %s\n", v.c(style.color), v.c(colorReset), line)
	}
	fmt.Fprintf(v.out, "%s└%s\n", v.c(style.color), v.c(colorReset))

	return h
}

// Remove takes a placeholder off the screen. Printed bubbles stay; a terminal
// cannot take back scrolled output.
func (v *View) Remove(h widget.Handle) {
	v.mu.Lock()
	s, ok := v.spinners[h]
	delete(v.spinners, h)
	v.mu.Unlock()

	if ok {
		close(s.stop)
		<-s.done
	}
}

// ClearInput is a no-op: the line reader consumes the input already.
func (v *View) ClearInput() {}

func (v *View) SetInputEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.inputEnabled = enabled
}

func (v *View) InputEnabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.inputEnabled
}

// Focus shows the prompt when input is accepted.
func (v *View) Focus() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.inputEnabled {
		fmt.Fprintf(v.out, "\n%s%s❯%s ", v.c(colorBold), v.c(colorGreen), v.c(colorReset))
	}
}

func (v *View) PrintInfo(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "%sℹ %s%s\n", v.c(colorCyan), msg, v.c(colorReset))
}

func (v *View) PrintGoodbye() {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "\n%sGoodbye! 👋%s\n", v.c(colorCyan), v.c(colorReset))
}

// Cleanup stops any spinner still running.
func (v *View) Cleanup() {
	v.mu.Lock()
	handles := make([]widget.Handle, 0, len(v.spinners))
	for h := range v.spinners {
		handles = append(handles, h)
	}
	v.mu.Unlock()

	for _, h := range handles {
		v.Remove(h)
	}
}

// startSpinner must be called with the lock held.
func (v *View) startSpinner(style bubbleStyle) *spinner {
	s := &spinner{stop: make(chan struct{}), done: make(chan struct{})}
	out := v.out

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(spinnerTick)
		defer ticker.Stop()

		for i := 0; ; i = (i + 1) % len(spinnerChars) {
			fmt.Fprintf(out, "%s%s%s %s %s is typing...%s", clearLine, colorCyan, spinnerChars[i], style.avatar, style.label, colorReset)
			select {
			case <-s.stop:
				fmt.Fprint(out, clearLine)
				return
			case <-ticker.C:
			}
		}
	}()

	return s
}

func (v *View) c(code string) string {
	if !v.color {
		return ""
	}
	return code
}
