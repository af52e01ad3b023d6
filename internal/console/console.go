// Package console prints decoded ESP traffic for a human.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/danmuck/espclient/internal/protocol/esp"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Printer writes events and client status messages. It is safe for use from
// the read goroutine and the input loop at the same time.
type Printer struct {
	mu      sync.Mutex
	out     io.Writer
	muted   esp.StreamSet
	current esp.Stream

	label  *color.Color
	stream *color.Color
	status *color.Color
	hint   *color.Color
	fail   *color.Color
}

// New builds a Printer. With colorize nil, color is enabled only when out
// is a terminal.
func New(out io.Writer, colorize *bool) *Printer {
	enabled := false
	if colorize != nil {
		enabled = *colorize
	} else if f, ok := out.(*os.File); ok {
		enabled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	p := &Printer{
		out:    out,
		label:  color.New(color.FgGreen),
		stream: color.New(color.FgCyan),
		status: color.New(color.FgMagenta),
		hint:   color.New(color.FgHiBlack),
		fail:   color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.label, p.stream, p.status, p.hint, p.fail} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Mute hides lines on the given streams and the switches into them.
func (p *Printer) Mute(set esp.StreamSet) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = set
}

// Received prints one decoded event.
func (p *Printer) Received(ev esp.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch ev.Kind {
	case esp.EventLine:
		if p.muted.Has(p.current) {
			return
		}
		fmt.Fprintf(p.out, "%s %s\n", p.label.Sprintf("%8s", "line:"), ev.Text)
	case esp.EventStream:
		p.current = ev.Stream
		if p.muted.Has(ev.Stream) {
			return
		}
		fmt.Fprintf(p.out, "%s %s\n", p.label.Sprintf("%8s", "stream:"), p.stream.Sprint(ev.Stream.String()))
	}
}

func (p *Printer) Sent(string) {}

func (p *Printer) Status(format string, args ...any) {
	p.printf("%s\n", p.status.Sprintf(format, args...))
}

func (p *Printer) Hint(format string, args ...any) {
	p.printf("%s\n", p.hint.Sprintf(format, args...))
}

func (p *Printer) Error(format string, args ...any) {
	p.printf("%s\n", p.fail.Sprintf(format, args...))
}

func (p *Printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}
