// Package teatest drives bubbletea models synchronously in tests.
//
// A Driver calls Update directly and runs every returned Cmd inline, feeding
// its message back into the model. Cmds that block past a short deadline
// (cursor blinks, tickers) are dropped.
package teatest

import (
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDepth bounds how many chained Cmds a single input may produce.
const MaxDepth = 64

const cmdDeadline = 10 * time.Millisecond

// Driver owns a model and the messages routed through it.
type Driver struct {
	t     testing.TB
	model tea.Model

	// Quit is set once a tea.QuitMsg has been produced.
	Quit bool
}

// Option configures a Driver.
type Option func(*Driver)

// WithSize delivers a WindowSizeMsg before anything else.
func WithSize(width, height int) Option {
	return func(d *Driver) {
		d.model, _ = d.model.Update(tea.WindowSizeMsg{Width: width, Height: height})
	}
}

// New wraps model and runs its Init command.
func New(t testing.TB, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{t: t, model: model}
	for _, opt := range opts {
		opt(d)
	}
	d.run(d.model.Init(), 0)
	return d
}

// Model returns the current model.
func (d *Driver) Model() tea.Model { return d.model }

// Send routes msg through Update. It is a no-op after quit.
func (d *Driver) Send(msg tea.Msg) {
	d.t.Helper()
	if d.Quit {
		return
	}
	var cmd tea.Cmd
	d.model, cmd = d.model.Update(msg)
	d.run(cmd, 0)
}

var namedKeys = map[string]tea.KeyType{
	"enter":  tea.KeyEnter,
	"esc":    tea.KeyEsc,
	"tab":    tea.KeyTab,
	"up":     tea.KeyUp,
	"down":   tea.KeyDown,
	"left":   tea.KeyLeft,
	"right":  tea.KeyRight,
	"pgup":   tea.KeyPgUp,
	"pgdown": tea.KeyPgDown,
	"ctrl+c": tea.KeyCtrlC,
	"ctrl+d": tea.KeyCtrlD,
	"ctrl+u": tea.KeyCtrlU,
}

// Press sends one key by name ("enter", "left", "ctrl+c") or a single rune.
func (d *Driver) Press(name string) {
	d.t.Helper()
	if kt, ok := namedKeys[name]; ok {
		d.Send(tea.KeyMsg{Type: kt})
		return
	}
	runes := []rune(name)
	if len(runes) != 1 {
		d.t.Fatalf("teatest: unknown key %q", name)
	}
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: runes})
}

// Type sends s one rune at a time.
func (d *Driver) Type(s string) {
	d.t.Helper()
	for _, r := range s {
		d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// View renders the model.
func (d *Driver) View() string { return d.model.View() }

func (d *Driver) run(cmd tea.Cmd, depth int) {
	if cmd == nil {
		return
	}
	if depth >= MaxDepth {
		d.t.Logf("teatest: command chain deeper than %d, stopping", MaxDepth)
		return
	}

	msg, ok := runWithDeadline(cmd)
	if !ok || msg == nil || isBlink(msg) {
		return
	}

	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			d.run(c, depth+1)
		}
	case tea.QuitMsg:
		d.Quit = true
	default:
		var next tea.Cmd
		d.model, next = d.model.Update(msg)
		d.run(next, depth+1)
	}
}

func runWithDeadline(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(cmdDeadline):
		return nil, false
	}
}

// isBlink matches the unexported cursor blink messages from bubbles.
func isBlink(msg tea.Msg) bool {
	t := reflect.TypeOf(msg)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.Contains(strings.ToLower(t.Name()), "blink")
}
