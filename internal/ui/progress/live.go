// Package progress shows a running build trace (spinner) and removal
// (progress bar) on stderr. Both stay silent when stderr is not a terminal.
package progress

import (
	"fmt"
	"os"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/mattn/go-isatty"
)

// Interactive reports whether stderr is a terminal that can show animations.
func Interactive() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// stopTimeout bounds how long Stop waits for the program to exit.
const stopTimeout = 500 * time.Millisecond

// live runs a model on stderr and feeds it updates of type U. The most
// recent update is kept even while the model is not running.
type live[U any] struct {
	mu       sync.Mutex
	program  *tea.Program
	updates  chan U
	done     chan struct{}
	last     U
	running  bool
	disabled bool
}

func newLive[U any](initial U) *live[U] {
	return &live[U]{
		updates:  make(chan U, 10),
		done:     make(chan struct{}),
		last:     initial,
		disabled: !Interactive(),
	}
}

// start builds the model from the latest update and runs it. It is a no-op
// when disabled, already running or stopped.
func (l *live[U]) start(model func(last U, updates <-chan U) tea.Model) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running || l.disabled || l.program != nil {
		return
	}

	l.program = tea.NewProgram(model(l.last, l.updates),
		tea.WithoutSignalHandler(),
		tea.WithInput(nil),
		tea.WithOutput(os.Stderr),
		tea.WithColorProfile(colorprofile.Detect(os.Stderr, os.Environ())),
	)
	l.running = true

	go func() {
		_, _ = l.program.Run()
		close(l.done)
	}()
}

// send records u and forwards it to a running model. A full channel drops
// u; the next update supersedes it.
func (l *live[U]) send(u U) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = u
	if !l.running {
		return
	}
	select {
	case l.updates <- u:
	default:
	}
}

func (l *live[U]) latest() U {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

func (l *live[U]) isRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// stop ends the model and clears its line.
func (l *live[U]) stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	close(l.updates)
	l.mu.Unlock()

	l.program.Quit()
	select {
	case <-l.done:
	case <-time.After(stopTimeout):
	}
	fmt.Fprint(os.Stderr, "\r\033[K")
}

// receive waits for the next update. A closed channel quits the program.
func receive[U any](updates <-chan U) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return tea.Quit()
		}
		return u
	}
}
