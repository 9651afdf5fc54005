// Package printer writes styled status lines for CLI commands.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/wiz/internal/core/styles"
)

type ctxKey struct{}

// Printer writes one styled line per call.
type Printer struct {
	w io.Writer
}

// New returns a printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// NewContext stores p in ctx.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer stored in ctx, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

func (p *Printer) line(style lipgloss.Style, icon, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if icon != "" {
		msg = style.Render(icon) + " " + msg
	}
	_, _ = fmt.Fprintln(p.w, msg)
}

func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(styles.SuccessStyle, styles.IconNotifySuccess, format, args...)
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(styles.MutedStyle, styles.IconNotifyInfo, format, args...)
}

func (p *Printer) Warnf(format string, args ...any) {
	p.line(styles.WarningStyle, styles.IconNotifyWarning, format, args...)
}

func (p *Printer) Errorf(format string, args ...any) {
	p.line(styles.ErrorStyle, styles.IconNotifyError, format, args...)
}

// Success prints a title with a muted detail line.
func (p *Printer) Success(title, detail string) {
	p.Successf("%s", title)
	if detail != "" {
		p.Printf("  %s", styles.MutedStyle.Render(detail))
	}
}
