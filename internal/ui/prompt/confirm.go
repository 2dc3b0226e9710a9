package prompt

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"

	"github.com/raphi011/cleanart/internal/ui/styles"
)

// ConfirmResult is the answer to a removal prompt. Declining moves on to
// the next category, cancelling stops the run.
type ConfirmResult struct {
	Confirmed bool
	Cancelled bool
}

type answer int

const (
	answerNone answer = iota
	answerYes
	answerNo
	answerCancel
)

// Enter means no: removal is never the default.
var answers = map[string]answer{
	"y": answerYes, "Y": answerYes,
	"n": answerNo, "N": answerNo, "enter": answerNo,
	"q": answerCancel, "esc": answerCancel, "ctrl+c": answerCancel,
}

type confirmModel struct {
	prompt string
	detail string // shown above the prompt, e.g. the largest candidates
	answer answer
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	if a := answers[key.String()]; a != answerNone {
		m.answer = a
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() tea.View {
	if m.answer != answerNone {
		return tea.NewView("")
	}
	line := m.prompt + " " + styles.MutedStyle.Render("[y/N]") + " "
	if m.detail != "" {
		line = styles.InfoStyle.Render(m.detail) + "\n" + line
	}
	return tea.NewView(line)
}

// ConfirmWithDetail asks a yes/no question with an optional line of
// context above it.
func ConfirmWithDetail(prompt, detail string) (ConfirmResult, error) {
	final, err := run(confirmModel{prompt: prompt, detail: detail})
	if err != nil {
		return ConfirmResult{}, err
	}
	a := final.(confirmModel).answer
	return ConfirmResult{Confirmed: a == answerYes, Cancelled: a == answerCancel}, nil
}

// run drives model on stderr so stdout stays clean for reports.
func run(model tea.Model) (tea.Model, error) {
	p := tea.NewProgram(model,
		tea.WithOutput(os.Stderr),
		tea.WithColorProfile(colorprofile.Detect(os.Stderr, os.Environ())),
	)
	return p.Run()
}
