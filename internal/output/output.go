// Package output writes cleanart's primary output: plans, removal
// summaries, history tables and encoded reports. Diagnostics go to stderr
// through the log package.
package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raphi011/cleanart/internal/ui/styles"
)

type ctxKey struct{}

// Printer writes to stdout unless another writer is attached.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// WithPrinter stores a Printer for w in ctx.
func WithPrinter(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, ctxKey{}, New(w))
}

// FromContext returns the Printer stored in ctx, or one writing to os.Stdout.
func FromContext(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout)
}

func (p *Printer) Print(a ...any) {
	fmt.Fprint(p.w, a...)
}

func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.w, format, a...)
}

func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// Section prints a highlighted title, the pre-rendered body and a blank
// line. An empty body prints nothing.
func (p *Printer) Section(title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	fmt.Fprintln(p.w, styles.AccentStyle.Render(title))
	fmt.Fprint(p.w, body)
	if !strings.HasSuffix(body, "\n") {
		fmt.Fprintln(p.w)
	}
	fmt.Fprintln(p.w)
}

// Writer returns the underlying writer, for encoders.
func (p *Printer) Writer() io.Writer {
	return p.w
}
