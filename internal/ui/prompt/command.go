package prompt

import (
	"strings"

	"charm.land/bubbles/v2/list"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/cleanart/internal/ui/styles"
)

// CustomCommandOption is the picker entry that asks for a free-form command.
const CustomCommandOption = "Enter custom command…"

// CommandResult is the build command picked by the user.
type CommandResult struct {
	Command   string
	Cancelled bool
}

// BuildProfile guesses the cargo profile a build command compiles from its
// flags. It returns "" for commands that are not cargo or trunk builds.
func BuildProfile(command string) string {
	fields := strings.Fields(command)
	if len(fields) < 2 || (fields[0] != "cargo" && fields[0] != "trunk") {
		return ""
	}
	for i, f := range fields {
		switch {
		case f == "--release" || (f == "-r" && fields[0] == "cargo"):
			return "release"
		case f == "--profile" && i+1 < len(fields):
			return fields[i+1]
		case strings.HasPrefix(f, "--profile="):
			return strings.TrimPrefix(f, "--profile=")
		}
	}
	return "dev"
}

type commandItem struct {
	command string
	custom  bool
}

func (i commandItem) Title() string {
	if i.custom {
		return CustomCommandOption
	}
	return i.command
}

func (i commandItem) Description() string {
	if p := BuildProfile(i.command); p != "" {
		return "profile " + p
	}
	return ""
}

func (i commandItem) FilterValue() string { return i.Title() }

// pickerModel lists the presets and switches to a text input when the
// custom entry is chosen.
type pickerModel struct {
	list      list.Model
	input     textinput.Model
	editing   bool
	invalid   bool // enter on an empty custom command
	command   string
	done      bool
	cancelled bool
}

func newPicker(presets []string) pickerModel {
	items := make([]list.Item, 0, len(presets)+1)
	for _, p := range presets {
		items = append(items, commandItem{command: p})
	}
	items = append(items, commandItem{custom: true})

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)
	delegate.Styles.NormalTitle = styles.NormalStyle
	delegate.Styles.SelectedTitle = styles.HighlightStyle
	delegate.Styles.SelectedDesc = styles.MutedStyle

	l := list.New(items, delegate, 72, min(2*len(items)+6, 24))
	l.Title = "Build command to trace"
	l.Styles.Title = styles.AccentStyle
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()

	in := textinput.New()
	in.Placeholder = "cargo build --release"
	in.CharLimit = 1024
	in.SetWidth(60)

	return pickerModel{list: l, input: in}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	case tea.KeyPressMsg:
		switch key := msg.String(); {
		case key == "ctrl+c":
			return m.finish("", true)
		case m.editing:
			return m.updateInput(msg)
		case m.list.SettingFilter():
			// the list consumes keys while the filter is typed
		case key == "esc" || key == "q":
			return m.finish("", true)
		case key == "enter":
			item, ok := m.list.SelectedItem().(commandItem)
			if !ok {
				return m, nil
			}
			if !item.custom {
				return m.finish(item.command, false)
			}
			m.editing = true
			focus := m.input.Focus()
			return m, focus
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) updateInput(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		command := strings.TrimSpace(m.input.Value())
		if command == "" {
			m.invalid = true
			return m, nil
		}
		return m.finish(command, false)
	case "esc":
		m.editing, m.invalid = false, false
		m.input.Blur()
		return m, nil
	}
	m.invalid = false
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m pickerModel) finish(command string, cancelled bool) (tea.Model, tea.Cmd) {
	m.command, m.cancelled, m.done = command, cancelled, true
	return m, tea.Quit
}

func (m pickerModel) View() tea.View {
	switch {
	case m.done:
		return tea.NewView("")
	case m.editing:
		view := styles.AccentStyle.Render("Command to trace:") + "\n" + m.input.View()
		if m.invalid {
			view += "\n" + styles.ErrorStyle.Render("a command is required")
		}
		return tea.NewView(view + "\n" + styles.MutedStyle.Render("esc: back to presets"))
	}
	return tea.NewView(m.list.View())
}

// PickCommand offers the presets plus a custom entry and returns the chosen
// build command.
func PickCommand(presets []string) (CommandResult, error) {
	final, err := run(newPicker(presets))
	if err != nil {
		return CommandResult{}, err
	}
	m := final.(pickerModel)
	return CommandResult{Command: m.command, Cancelled: m.cancelled}, nil
}
