package trace

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrEmptyCommand is returned when the build command is blank.
var ErrEmptyCommand = errors.New("build command is empty")

// DefaultShell interprets the build command.
const DefaultShell = "sh"

// traceEnv raises cargo's fingerprint logging for the child only.
var traceEnv = []string{
	"CARGO_LOG=" + fingerprintTarget + "=trace",
	"CARGO_TERM_COLOR=always",
}

// Stream identifies which output of the child a line came from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Status is a line of regular build output, passed through unmodified.
type Status struct {
	Stream    Stream
	Line      string
	Artifacts int // artifacts recorded so far
}

// Tracer runs a build command and collects the artifacts it uses.
type Tracer struct {
	// OutputRoot is the target directory. Paths outside it are ignored.
	OutputRoot string
	// Dir is the working directory of the build. Empty means the current one.
	Dir string
	// Shell runs the command as `<Shell> -c <command>`. Defaults to sh.
	Shell string
	// Env is appended to the inherited environment.
	Env []string
	// OnStatus receives every non-diagnostic line. It is called from the
	// goroutine running Trace.
	OnStatus func(Status)
}

// Result is what one traced build observed.
type Result struct {
	// Used holds the absolute paths of every artifact the build referenced.
	Used map[string]struct{}
	// UsedBy maps an artifact to the units whose checks mentioned it.
	// It is a reporting hint and never decides liveness.
	UsedBy map[string]map[string]struct{}
	// ExitCode of the build. -1 if it was terminated by a signal.
	ExitCode int
	// Started is when the build was spawned. Anything modified after it
	// may have been produced by the build itself.
	Started time.Time
}

// NewResult returns an empty Result.
func NewResult() *Result {
	return &Result{
		Used:   make(map[string]struct{}),
		UsedBy: make(map[string]map[string]struct{}),
	}
}

// Add records path as used, optionally by consumer.
func (r *Result) Add(path, consumer string) {
	r.Used[path] = struct{}{}
	if consumer == "" {
		return
	}
	set, ok := r.UsedBy[path]
	if !ok {
		set = make(map[string]struct{})
		r.UsedBy[path] = set
	}
	set[consumer] = struct{}{}
}

// Succeeded reports whether the build exited with status 0.
func (r *Result) Succeeded() bool {
	return r.ExitCode == 0
}

// Paths returns the used artifacts in sorted order.
func (r *Result) Paths() []string {
	paths := make([]string, 0, len(r.Used))
	for p := range r.Used {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Consumers returns the sorted consumer hints recorded for path.
func (r *Result) Consumers(path string) []string {
	set := r.UsedBy[path]
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

type line struct {
	stream Stream
	text   string
}

// Trace runs command to completion and returns what it used.
//
// A build that exits non-zero still returns its Result, with ExitCode set and
// a nil error: the caller decides what a failed build means. Failing to start
// the shell is an error. Cancelling ctx kills the build's whole process group
// and returns ctx.Err().
func (t *Tracer) Trace(ctx context.Context, command string) (*Result, error) {
	if strings.TrimSpace(command) == "" {
		return nil, ErrEmptyCommand
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shell := t.Shell
	if shell == "" {
		shell = DefaultShell
	}

	c := exec.CommandContext(ctx, shell, "-c", command)
	c.Dir = t.Dir
	c.Env = append(append(os.Environ(), t.Env...), traceEnv...)
	setProcessGroup(c)
	c.WaitDelay = 5 * time.Second

	stdout, err := c.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := c.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	res := NewResult()
	res.Started = time.Now()
	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", shell, err)
	}

	lines := make(chan line, 64)
	var wg sync.WaitGroup
	wg.Add(2)
	go drain(&wg, stdout, Stdout, lines)
	go drain(&wg, stderr, Stderr, lines)
	go func() {
		wg.Wait()
		close(lines)
	}()

	for l := range lines {
		t.handle(res, l)
	}

	waitErr := c.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("wait for build: %w", waitErr)
		}
		res.ExitCode = exitErr.ExitCode()
		if res.ExitCode == 0 {
			res.ExitCode = -1
		}
	}
	return res, nil
}

func (t *Tracer) handle(res *Result, l line) {
	if path, consumer, ok := ExtractArtifact(t.OutputRoot, l.text); ok {
		res.Add(path, consumer)
		return
	}
	if isDiagnostic(l.text) || strings.TrimSpace(l.text) == "" {
		return
	}
	if t.OnStatus != nil {
		t.OnStatus(Status{Stream: l.stream, Line: l.text, Artifacts: len(res.Used)})
	}
}

// drain reads r line by line into out until EOF or a read error.
// Lines of any length are accepted.
func drain(wg *sync.WaitGroup, r io.Reader, s Stream, out chan<- line) {
	defer wg.Done()
	br := bufio.NewReader(r)
	for {
		text, err := br.ReadString('\n')
		if text != "" {
			out <- line{stream: s, text: strings.TrimRight(text, "\r\n")}
		}
		if err != nil {
			return
		}
	}
}
