package progress

import (
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/cleanart/internal/format"
	"github.com/raphi011/cleanart/internal/ui/styles"
)

type removal struct {
	done  int
	bytes int64
	item  string
}

// ProgressBar shows removal progress: items done out of total, bytes freed
// and the item being removed.
type ProgressBar struct {
	live  *live[removal]
	total int
}

type progressBarModel struct {
	bar     progress.Model
	total   int
	state   removal
	updates <-chan removal
}

func (m progressBarModel) Init() tea.Cmd {
	return receive(m.updates)
}

func (m progressBarModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(removal); ok {
		m.state = msg
		return m, receive(m.updates)
	}
	var cmd tea.Cmd
	m.bar, cmd = m.bar.Update(msg)
	return m, cmd
}

func (m progressBarModel) View() tea.View {
	s := m.state
	return tea.NewView(render(m.bar.ViewAs(fraction(s.done, m.total)), s.done, m.total, s.bytes, s.item))
}

func fraction(current, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(current) / float64(total)
}

// render formats one line: "<bar> 12/40 3.20 MiB libserde-1.rlib".
func render(bar string, current, total int, bytes int64, item string) string {
	line := fmt.Sprintf("%s %d/%d %s", bar, current, total, format.Bytes(bytes))
	if item != "" {
		line += " " + styles.MutedStyle.Render(item)
	}
	return line
}

// NewProgressBar returns a bar for total items, labelled with message
// until the first update.
func NewProgressBar(total int, message string) *ProgressBar {
	return &ProgressBar{live: newLive(removal{item: message}), total: total}
}

func (p *ProgressBar) Start() {
	p.live.start(func(last removal, updates <-chan removal) tea.Model {
		return progressBarModel{
			bar: progress.New(
				progress.WithWidth(40),
				progress.WithoutPercentage(),
				progress.WithColors(styles.Primary, styles.Accent),
			),
			total:   p.total,
			state:   last,
			updates: updates,
		}
	})
}

// SetProgress reports done items, freed bytes and the current item.
func (p *ProgressBar) SetProgress(done int, bytes int64, item string) {
	p.live.send(removal{done: done, bytes: bytes, item: item})
}

// Current returns the last reported item count and freed bytes.
func (p *ProgressBar) Current() (int, int64) {
	r := p.live.latest()
	return r.done, r.bytes
}

func (p *ProgressBar) Stop() {
	p.live.stop()
}

func (p *ProgressBar) Total() int {
	return p.total
}
