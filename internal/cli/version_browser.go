package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/pursuit/internal/cli/formatter"
	"github.com/alexanderramin/pursuit/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type browserKeyMap struct {
	Prev    key.Binding
	Next    key.Binding
	Select  key.Binding
	Approve key.Binding
	Quit    key.Binding
}

func defaultBrowserKeys() browserKeyMap {
	return browserKeyMap{
		Prev:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "older")),
		Next:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "newer")),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Approve: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve")),
		Quit:    key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "back")),
	}
}

func (k browserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Select, k.Approve, k.Quit}
}

// browserResult is what the user chose in the version browser.
type browserResult struct {
	Index    int
	Selected bool
	Approve  bool
}

// versionBrowser pages through the version history one version at a time.
// Long versions scroll inside a viewport.
type versionBrowser struct {
	versions []domain.Version
	index    int
	keys     browserKeyMap
	vp       viewport.Model
	result   browserResult
}

func newVersionBrowser(versions []domain.Version, index int) *versionBrowser {
	if index < 0 || index >= len(versions) {
		index = len(versions) - 1
	}
	b := &versionBrowser{
		versions: versions,
		index:    index,
		keys:     defaultBrowserKeys(),
		vp:       viewport.New(80, 20),
	}
	b.vp.KeyMap = viewport.KeyMap{
		Up:           key.NewBinding(key.WithKeys("up", "k")),
		Down:         key.NewBinding(key.WithKeys("down", "j")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
	}
	b.refresh()
	return b
}

func (b *versionBrowser) refresh() {
	if len(b.versions) == 0 {
		b.vp.SetContent(formatter.Dim("No versions yet."))
		return
	}
	b.vp.SetContent(formatter.FormatVersion(b.versions[b.index], b.index, len(b.versions)))
	b.vp.GotoTop()
}

func (b *versionBrowser) Init() tea.Cmd { return nil }

func (b *versionBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.vp.Width = msg.Width
		b.vp.Height = max(msg.Height-2, 1)
		return b, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keys.Quit):
			return b, tea.Quit
		case key.Matches(msg, b.keys.Prev):
			if b.index > 0 {
				b.index--
				b.refresh()
			}
			return b, nil
		case key.Matches(msg, b.keys.Next):
			if b.index < len(b.versions)-1 {
				b.index++
				b.refresh()
			}
			return b, nil
		case key.Matches(msg, b.keys.Select):
			if len(b.versions) == 0 {
				return b, nil
			}
			b.result = browserResult{Index: b.index, Selected: true}
			return b, tea.Quit
		case key.Matches(msg, b.keys.Approve):
			if len(b.versions) == 0 {
				return b, nil
			}
			b.result = browserResult{Index: b.index, Selected: true, Approve: true}
			return b, tea.Quit
		}
	}

	var cmd tea.Cmd
	b.vp, cmd = b.vp.Update(msg)
	return b, cmd
}

func (b *versionBrowser) View() string {
	var hints []string
	for _, k := range b.keys.ShortHelp() {
		h := k.Help()
		hints = append(hints, fmt.Sprintf("%s %s", formatter.Bold(h.Key), formatter.Dim(h.Desc)))
	}
	return b.vp.View() + "\n" + strings.Join(hints, "  ")
}

// Result returns the user's choice once the program has exited.
func (b *versionBrowser) Result() browserResult { return b.result }
