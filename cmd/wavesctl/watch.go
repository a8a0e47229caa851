package main

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/llehouerou/wavesd/internal/control"
)

const watchInterval = 500 * time.Millisecond

// remote is the part of the control client the watch view drives.
type remote interface {
	Status(ctx context.Context) (control.Info, error)
	Signal(ctx context.Context, name string) error
	Load(ctx context.Context, paths []string, index int) error
	Repeat(ctx context.Context, mode string) (string, error)
	Shuffle(ctx context.Context, mode string) (bool, error)
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live status view with transport keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := control.Dial()
			if err != nil {
				return err
			}
			defer c.Close()

			p := tea.NewProgram(newWatchModel(c), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}

type watchKeys struct {
	Toggle key.Binding
	Next   key.Binding
	Prev   key.Binding
	Stop    key.Binding
	Repeat  key.Binding
	Shuffle key.Binding
	Open    key.Binding
	Quit    key.Binding
}

func (k watchKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Next, k.Prev, k.Stop, k.Repeat, k.Shuffle, k.Open, k.Quit}
}

func (k watchKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultWatchKeys = watchKeys{
	Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
	Next:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
	Prev:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
	Stop:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
	Repeat:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
	Shuffle: key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "shuffle")),
	Open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "load path")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type (
	statusMsg struct {
		info control.Info
		err  error
	}
	watchTickMsg time.Time
	actionMsg    struct{ err error }
)

type watchModel struct {
	rc    remote
	keys  watchKeys
	help  help.Model
	bar   progress.Model
	input textinput.Model

	info      control.Info
	err       error
	width     int
	prompting bool
}

func newWatchModel(rc remote) watchModel {
	input := textinput.New()
	input.Prompt = "load: "
	input.Placeholder = "path to a file"

	return watchModel{
		rc:    rc,
		keys:  defaultWatchKeys,
		help:  help.New(),
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		input: input,
		width: 60,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(), watchTick())
}

func watchTick() tea.Cmd {
	return tea.Tick(watchInterval, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func (m watchModel) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		info, err := m.rc.Status(ctx)
		return statusMsg{info: info, err: err}
	}
}

func (m watchModel) signal(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		return actionMsg{err: m.rc.Signal(ctx, name)}
	}
}

func (m watchModel) cycleRepeat() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		_, err := m.rc.Repeat(ctx, "cycle")
		return actionMsg{err: err}
	}
}

func (m watchModel) toggleShuffle() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		_, err := m.rc.Shuffle(ctx, "toggle")
		return actionMsg{err: err}
	}
}

func (m watchModel) load(path string) tea.Cmd {
	return func() tea.Msg {
		paths, err := absPaths([]string{path})
		if err != nil {
			return actionMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		return actionMsg{err: m.rc.Load(ctx, paths, 0)}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(msg.Width-4, 10)
		m.help.Width = msg.Width
		return m, nil

	case statusMsg:
		m.err = msg.err
		if msg.err == nil {
			m.info = msg.info
		}
		return m, nil

	case watchTickMsg:
		return m, tea.Batch(m.fetch(), watchTick())

	case actionMsg:
		m.err = msg.err
		return m, m.fetch()

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m watchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		return m, m.signal("play-pause")
	case key.Matches(msg, m.keys.Next):
		return m, m.signal("next")
	case key.Matches(msg, m.keys.Prev):
		return m, m.signal("previous")
	case key.Matches(msg, m.keys.Stop):
		return m, m.signal("stop")
	case key.Matches(msg, m.keys.Repeat):
		return m, m.cycleRepeat()
	case key.Matches(msg, m.keys.Shuffle):
		return m, m.toggleShuffle()
	case key.Matches(msg, m.keys.Open):
		m.prompting = true
		return m, m.input.Focus()
	}
	return m, nil
}

func (m watchModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompting = false
		m.input.Blur()
		m.input.Reset()
		return m, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(m.input.Value())
		m.prompting = false
		m.input.Blur()
		m.input.Reset()
		if path == "" {
			return m, nil
		}
		return m, m.load(path)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m watchModel) View() string {
	var b strings.Builder
	b.WriteString(renderStatus(m.info))
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(fraction(m.info.Position, m.info.Length)))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n" + ansi.Truncate(offStyle.Render(m.err.Error()), m.width, "…"))
	}
	if m.prompting {
		b.WriteString("\n" + m.input.View())
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func fraction(pos, length time.Duration) float64 {
	if length <= 0 {
		return 0
	}
	return min(max(float64(pos)/float64(length), 0), 1)
}
