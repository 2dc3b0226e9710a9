package progress

import (
	"fmt"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/cleanart/internal/ui/styles"
)

type spinnerMessage string

// Spinner shows a message with the time elapsed since Start, e.g. while
// the traced build runs.
type Spinner struct {
	live *live[spinnerMessage]
}

type spinnerModel struct {
	spinner spinner.Model
	message spinnerMessage
	started time.Time
	updates <-chan spinnerMessage
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, receive(m.updates))
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(spinnerMessage); ok {
		m.message = msg
		return m, receive(m.updates)
	}
	// Keys are ignored: the traced build owns the terminal's signals.
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m spinnerModel) View() tea.View {
	if m.message == "" {
		return tea.NewView("")
	}
	return tea.NewView(fmt.Sprintf("%s %s %s", m.spinner.View(), m.message,
		styles.MutedStyle.Render(elapsed(time.Since(m.started)))))
}

// elapsed formats d as "(4s)" or "(2m05s)".
func elapsed(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("(%ds)", int(d.Seconds()))
	}
	return fmt.Sprintf("(%dm%02ds)", int(d.Minutes()), int(d.Seconds())%60)
}

func NewSpinner(message string) *Spinner {
	return &Spinner{live: newLive(spinnerMessage(message))}
}

func (s *Spinner) Start() {
	s.live.start(func(last spinnerMessage, updates <-chan spinnerMessage) tea.Model {
		sp := spinner.New()
		sp.Spinner = spinner.Dot
		sp.Style = styles.PrimaryStyle
		return spinnerModel{spinner: sp, message: last, started: time.Now(), updates: updates}
	})
}

func (s *Spinner) UpdateMessage(message string) {
	s.live.send(spinnerMessage(message))
}

// Message returns the latest message.
func (s *Spinner) Message() string {
	return string(s.live.latest())
}

func (s *Spinner) Stop() {
	s.live.stop()
}
