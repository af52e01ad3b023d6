// Package lineeditor reads user input lines with editing and history when
// stdin is a terminal, and plain scanning otherwise.
package lineeditor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

const historyLimit = 500

// ErrInterrupted is returned by ReadLine when the user presses Ctrl-C.
var ErrInterrupted = errors.New("lineeditor: interrupted")

// Editor reads one line at a time. io.EOF marks Ctrl-D or end of input.
type Editor struct {
	interactive bool
	rl          *readline.Instance

	in          *bufio.Scanner
	out         io.Writer
	historyPath string
	hadHistory  bool
}

// Options configures New.
type Options struct {
	HistoryFile string
	In          io.Reader
	Out         io.Writer
}

// New picks the interactive editor when stdin and stdout are terminals
// and falls back to a scanner otherwise, or when readline fails to start.
func New(opts Options) *Editor {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	hadHistory := historyExists(opts.HistoryFile)

	if isTerminal(opts.In) && isTerminal(opts.Out) && os.Getenv("INSIDE_EMACS") == "" {
		rl, err := readline.NewFromConfig(&readline.Config{
			HistoryFile:            opts.HistoryFile,
			HistoryLimit:           historyLimit,
			DisableAutoSaveHistory: true,
		})
		if err == nil {
			return &Editor{interactive: true, rl: rl, historyPath: opts.HistoryFile, hadHistory: hadHistory}
		}
		fmt.Fprintf(os.Stderr, "Warning: readline init failed (%v), using basic input\n", err)
	}
	return &Editor{
		in:          bufio.NewScanner(opts.In),
		out:         opts.Out,
		historyPath: opts.HistoryFile,
		hadHistory:  hadHistory,
	}
}

// HadHistory reports whether a history file existed when the editor opened.
func (e *Editor) HadHistory() bool {
	return e.hadHistory
}

func (e *Editor) IsInteractive() bool {
	return e.interactive
}

// ReadLine shows prompt and returns the next line without its newline.
func (e *Editor) ReadLine(prompt string) (string, error) {
	if !e.interactive {
		fmt.Fprint(e.out, prompt)
		if !e.in.Scan() {
			if err := e.in.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return e.in.Text(), nil
	}

	e.rl.SetPrompt(prompt)
	line, err := e.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) {
			return "", ErrInterrupted
		}
		return "", err
	}
	return line, nil
}

// AddHistory records a line the user submitted.
func (e *Editor) AddHistory(line string) {
	if !e.interactive || strings.TrimSpace(line) == "" {
		return
	}
	e.rl.SaveToHistory(line)
}

func (e *Editor) Close() {
	if e.rl != nil {
		e.rl.Close()
		e.rl = nil
	}
}

func historyExists(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
