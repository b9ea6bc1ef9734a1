package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mohsinsiddi/w3mint/internal/mint"
)

const (
	defaultToastTTL = 5 * time.Second
	toastTickEvery  = 500 * time.Millisecond
	maxToasts       = 4
)

// Toast is one transient notification.
type Toast struct {
	Level   mint.Level
	Message string
	Expires time.Time
}

// Toasts is the notification stack shown under the mint card. It satisfies
// mint.Notifier and, like the form, belongs to the program's update loop.
type Toasts struct {
	items []Toast
	ttl   time.Duration
	now   func() time.Time
}

// NewToasts creates a stack whose entries live for ttl. A zero ttl uses the
// default of five seconds.
func NewToasts(ttl time.Duration) *Toasts {
	if ttl <= 0 {
		ttl = defaultToastTTL
	}
	return &Toasts{ttl: ttl, now: time.Now}
}

// Notify pushes a toast. Only the newest few are kept.
func (t *Toasts) Notify(level mint.Level, msg string) {
	t.items = append(t.items, Toast{Level: level, Message: msg, Expires: t.now().Add(t.ttl)})
	if len(t.items) > maxToasts {
		t.items = t.items[len(t.items)-maxToasts:]
	}
}

// Prune drops toasts that expired at or before now.
func (t *Toasts) Prune(now time.Time) {
	kept := t.items[:0]
	for _, it := range t.items {
		if now.Before(it.Expires) {
			kept = append(kept, it)
		}
	}
	t.items = kept
}

// Items returns the live toasts, oldest first.
func (t *Toasts) Items() []Toast {
	return append([]Toast(nil), t.items...)
}

// View renders the live toasts.
func (t *Toasts) View(theme Theme) string {
	if len(t.items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(t.items))
	for _, it := range t.items {
		lines = append(lines, toastLine(theme, it.Level, it.Message))
	}
	return strings.Join(lines, "\n")
}

type toastTickMsg time.Time

func toastTick() tea.Cmd {
	return tea.Tick(toastTickEvery, func(t time.Time) tea.Msg { return toastTickMsg(t) })
}

func toastLine(theme Theme, level mint.Level, msg string) string {
	var (
		color lipgloss.Color
		icon  string
	)
	switch level {
	case mint.LevelSuccess:
		color, icon = theme.Success, "✓"
	case mint.LevelError:
		color, icon = theme.Error, "✗"
	default:
		color, icon = theme.Info, "ℹ"
	}
	return theme.level(color).Render(icon + " " + msg)
}

// ConsoleNotifier prints notifications as lines on a writer. The headless
// mint path uses it in place of toasts. With a Spinner set, lines are
// printed above the running spinner and a success or error stops it.
type ConsoleNotifier struct {
	W       io.Writer
	Spinner *Spinner
}

// Notify writes one formatted line.
func (c ConsoleNotifier) Notify(level mint.Level, msg string) {
	var line string
	switch level {
	case mint.LevelSuccess:
		line = Success(msg)
	case mint.LevelError:
		line = Err(msg)
	default:
		line = Info(msg)
	}

	switch {
	case c.Spinner == nil:
		fmt.Fprintln(c.W, line)
	case level == mint.LevelInfo:
		c.Spinner.Println(line)
	default:
		c.Spinner.StopWithMsg(line)
	}
}
