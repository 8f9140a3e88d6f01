// Package report renders placement results and environment listings for
// the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/winpos/internal/config"
	"github.com/1broseidon/winpos/internal/placement"
	"github.com/1broseidon/winpos/internal/platform"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const statusWidth = 20

type styles struct {
	ok    func(...string) string
	warn  func(...string) string
	fail  func(...string) string
	muted func(...string) string
	bold  func(...string) string
}

func plainStyles() styles {
	plain := func(s ...string) string { return strings.Join(s, " ") }
	return styles{ok: plain, warn: plain, fail: plain, muted: plain, bold: plain}
}

func colorStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		ok:    r.NewStyle().Foreground(lipgloss.Color("2")).Render,
		warn:  r.NewStyle().Foreground(lipgloss.Color("3")).Render,
		fail:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")).Render,
		muted: r.NewStyle().Foreground(lipgloss.Color("244")).Render,
		bold:  r.NewStyle().Bold(true).Render,
	}
}

// Printer writes human-readable reports.
type Printer struct {
	w     io.Writer
	style styles
}

// NewPrinter returns a printer for w. Output is colored only when w is a
// terminal and NO_COLOR is unset.
func NewPrinter(w io.Writer) *Printer {
	return NewPrinterWithColor(w, IsTerminal(w) && os.Getenv("NO_COLOR") == "")
}

// NewPrinterWithColor returns a printer with color forced on or off.
func NewPrinterWithColor(w io.Writer, color bool) *Printer {
	p := &Printer{w: w, style: plainStyles()}
	if color {
		p.style = colorStyles(w)
	}
	return p
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Result prints one status line per rule followed by a summary line.
func (p *Printer) Result(res *placement.Result) {
	for _, o := range res.Outcomes {
		fmt.Fprintf(p.w, "%s %s: %s\n", p.status(o.Status), p.style.bold(o.RuleName), o.Detail)
	}

	s := res.Summary()
	line := fmt.Sprintf("%d placed, %d failed", s.Placed, s.Failed)
	switch {
	case len(res.Outcomes) == 0:
		line = "no rules to apply"
	case s.Failed == 0:
		line = p.style.ok(line)
	case s.Placed == 0:
		line = p.style.fail(line)
	default:
		line = p.style.warn(line)
	}
	fmt.Fprintln(p.w, line)
}

func (p *Printer) status(s placement.Status) string {
	label := fmt.Sprintf("%-*s", statusWidth, "["+string(s)+"]")
	switch s {
	case placement.StatusPlaced:
		return p.style.ok(label)
	case placement.StatusNoMatch:
		return p.style.warn(label)
	default:
		return p.style.fail(label)
	}
}

// Rejected prints every invalid rule with its problems.
func (p *Printer) Rejected(rejected []*config.RuleError) {
	for _, r := range rejected {
		label := fmt.Sprintf("rules[%d]", r.Index)
		if r.Name != "" {
			label += " (" + r.Name + ")"
		}
		fmt.Fprintf(p.w, "%s %s skipped\n", p.status("invalid"), p.style.bold(label))
		for _, prob := range r.Problems {
			fmt.Fprintf(p.w, "    %s\n", prob.Error())
		}
	}
}

// Rules prints the valid rules of a loaded configuration.
func (p *Printer) Rules(res *config.LoadResult) {
	fmt.Fprintf(p.w, "config: %s\n", res.File)
	for _, r := range res.Rules {
		desktop := "keep"
		if r.Desktop != nil {
			desktop = fmt.Sprintf("%d", *r.Desktop)
		}
		fmt.Fprintf(p.w, "  %s %s screen=%d desktop=%s size=%sx%s align=%q\n",
			p.style.bold(r.DisplayName()),
			p.style.muted(r.Match.String()),
			r.Screen, desktop, r.Width, r.Height, r.Align.String())
	}
	for _, key := range res.Ignored {
		fmt.Fprintf(p.w, "  %s\n", p.style.muted("ignored key: "+key))
	}
	p.Rejected(res.Rejected)
	fmt.Fprintf(p.w, "%d of %d rules valid\n", len(res.Rules), res.Total())
}

// Screens prints the detected screens in index order.
func (p *Printer) Screens(screens []platform.Screen, desktops int) {
	for _, s := range screens {
		fmt.Fprintf(p.w, "%s %-10s %dx%d+%d+%d\n",
			p.style.bold(fmt.Sprintf("screen %d", s.Index)), s.Name, s.Width, s.Height, s.X, s.Y)
	}
	fmt.Fprintf(p.w, "%d desktops\n", desktops)
}

// Windows prints windows in directory order with their desktop ("*" for
// all desktops) and owning process. procs may be nil.
func (p *Printer) Windows(windows []platform.Window, procs placement.ProcessResolver) {
	for _, w := range windows {
		proc := ""
		if procs != nil && w.PID > 0 {
			if path, err := procs.ProcessPath(w.PID); err == nil {
				proc = path
			}
		}
		b := w.Bounds
		desktop := "*"
		if w.Desktop >= 0 {
			desktop = fmt.Sprintf("%d", w.Desktop)
		}
		line := fmt.Sprintf("0x%08x %2s %7d %dx%d+%d+%d %q", uint32(w.ID), desktop, w.PID, b.Width, b.Height, b.X, b.Y, w.Title)
		if proc != "" {
			line += " " + p.style.muted(proc)
		}
		fmt.Fprintln(p.w, line)
	}
}
