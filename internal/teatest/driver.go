// Package teatest drives bubbletea models synchronously in tests.
//
// Instead of running a tea.Program, a Driver calls Update directly and
// drains every returned Cmd inline, so view behavior is testable without
// goroutines or terminal I/O. Cmds that block on timers (cursor blink,
// tea.Tick) are skipped after a short grace period.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxDrainDepth caps recursive command draining so a model that keeps
// emitting commands cannot hang a test.
const maxDrainDepth = 100

// cmdGrace is how long a Cmd may take before the driver gives up on it.
// Real commands in tests finish in microseconds; timer-backed commands
// block for hundreds of milliseconds and are meant to be dropped.
const cmdGrace = 10 * time.Millisecond

// Driver runs a tea.Model through scripted input.
type Driver struct {
	t     *testing.T
	model tea.Model

	// Quit is set when the model produces tea.QuitMsg. The bubbletea
	// runtime normally swallows that message, so the driver tracks it
	// itself.
	Quit bool
}

// Run creates a Driver, sends the initial window size, and drains the
// model's Init command.
func Run(t *testing.T, model tea.Model, width, height int) *Driver {
	t.Helper()
	d := &Driver{t: t, model: model}
	updated, _ := d.model.Update(tea.WindowSizeMsg{Width: width, Height: height})
	d.model = updated
	d.drain(d.model.Init(), 0)
	return d
}

// Send dispatches one message and drains everything it triggers.
func (d *Driver) Send(msg tea.Msg) {
	d.t.Helper()
	if d.Quit {
		return
	}
	updated, cmd := d.model.Update(msg)
	d.model = updated
	d.drain(cmd, 0)
}

// namedKeys maps Press arguments to non-rune key events.
var namedKeys = map[string]tea.KeyMsg{
	"enter":  {Type: tea.KeyEnter},
	"esc":    {Type: tea.KeyEsc},
	"tab":    {Type: tea.KeyTab},
	"space":  {Type: tea.KeySpace, Runes: []rune{' '}},
	"up":     {Type: tea.KeyUp},
	"down":   {Type: tea.KeyDown},
	"left":   {Type: tea.KeyLeft},
	"right":  {Type: tea.KeyRight},
	"ctrl+c": {Type: tea.KeyCtrlC},
}

// Press sends a key by name ("enter", "esc", "ctrl+c", ...) or a single
// character ("q", "1").
func (d *Driver) Press(key string) {
	d.t.Helper()
	if msg, ok := namedKeys[key]; ok {
		d.Send(msg)
		return
	}
	runes := []rune(key)
	if len(runes) != 1 {
		d.t.Fatalf("teatest: unknown key %q", key)
	}
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: runes})
}

// Type sends a string one character at a time.
func (d *Driver) Type(s string) {
	d.t.Helper()
	for _, r := range s {
		d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// View renders the model's current frame.
func (d *Driver) View() string {
	return d.model.View()
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	d.t.Helper()
	if cmd == nil {
		return
	}
	if depth >= maxDrainDepth {
		d.t.Logf("teatest: drain depth limit (%d) reached", maxDrainDepth)
		return
	}

	msg := execWithGrace(cmd)
	if msg == nil || isCursorBlink(msg) {
		return
	}

	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, sub := range msg {
			if sub != nil {
				d.drain(sub, depth+1)
			}
		}
	case tea.QuitMsg:
		d.Quit = true
		updated, _ := d.model.Update(msg)
		d.model = updated
	default:
		updated, next := d.model.Update(msg)
		d.model = updated
		d.drain(next, depth+1)
	}
}

// execWithGrace runs a Cmd on its own goroutine and abandons it if it
// does not return within cmdGrace.
func execWithGrace(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() {
		ch <- cmd()
	}()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(cmdGrace):
		return nil
	}
}

// isCursorBlink detects the bubbles/cursor blink messages, which are
// unexported types that chain into further blocking timer commands.
func isCursorBlink(msg tea.Msg) bool {
	return strings.Contains(fmt.Sprintf("%T", msg), "link")
}
