package placement

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/1broseidon/winpos/internal/config"
	"github.com/1broseidon/winpos/internal/platform"
)

// Options configures an Orchestrator.
type Options struct {
	// DryRun resolves every rule but never changes desktops or windows.
	DryRun bool
	Logger *slog.Logger
}

// Orchestrator runs a placement pass over a rule set.
type Orchestrator struct {
	backend platform.Backend
	matcher *Matcher
	dryRun  bool
	logger  *slog.Logger
}

// NewOrchestrator creates an orchestrator driving backend.
func NewOrchestrator(backend platform.Backend, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}
	return &Orchestrator{
		backend: backend,
		matcher: NewMatcher(backend, logger),
		dryRun:  opts.DryRun,
		logger:  logger,
	}
}

// Run places every rule in order. It returns an *EnvironmentError when the
// environment cannot be queried; otherwise failures are recorded per rule
// and never stop the pass.
func (o *Orchestrator) Run(rules []config.Rule) (*Result, error) {
	snap, err := TakeSnapshot(o.backend)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("environment snapshot",
		"screens", len(snap.Screens),
		"desktops", snap.DesktopCount)

	if !o.dryRun {
		o.ensureDesktops(snap, config.MaxDesktop(rules)+1)
	}

	res := &Result{Snapshot: snap, Outcomes: make([]Outcome, 0, len(rules))}
	for _, rule := range rules {
		out := o.place(snap, rule)
		o.log(out)
		res.Outcomes = append(res.Outcomes, out)
	}
	o.logger.Debug("placement pass finished",
		"rules", len(rules),
		"changes", snap.Generation)
	return res, nil
}

// ensureDesktops grows the desktop count to at least need. It never
// removes desktops. A failed request is logged; rules targeting missing
// desktops then fail individually.
func (o *Orchestrator) ensureDesktops(snap *Snapshot, need int) {
	if need <= snap.DesktopCount {
		return
	}
	if err := o.backend.SetDesktopCount(need); err != nil {
		o.logger.Warn("failed to add desktops",
			"have", snap.DesktopCount,
			"need", need,
			"error", err)
		return
	}
	o.logger.Info("added desktops", "from", snap.DesktopCount, "to", need)
	snap.DesktopCount = need
	snap.Generation++
}

func (o *Orchestrator) place(snap *Snapshot, rule config.Rule) Outcome {
	out := Outcome{RuleName: rule.DisplayName(), Desktop: rule.Desktop}

	screen, ok := snap.Screen(rule.Screen)
	if !ok {
		out.Status = StatusScreenIndexOutOfRange
		out.Detail = fmt.Sprintf("screen %d requested but only %d detected", rule.Screen, len(snap.Screens))
		return out
	}

	// Re-list windows for every rule: earlier rules may have moved them.
	windows, err := o.backend.Windows()
	if err != nil {
		out.Status = StatusApplyFailed
		out.Detail = fmt.Sprintf("failed to list windows: %v", err)
		return out
	}

	win, ok := o.matcher.Match(rule, windows)
	if !ok {
		out.Status = StatusNoMatch
		out.Detail = fmt.Sprintf("no window matches %s", rule.Match)
		return out
	}
	out.Window = &win

	geom := ResolveGeometry(rule, screen, win.Bounds)
	out.Geometry = &geom

	if o.dryRun {
		out.Status = StatusPlaced
		out.Detail = describe(win, geom, rule.Desktop) + " (dry run)"
		return out
	}

	if rule.Desktop != nil {
		if *rule.Desktop >= snap.DesktopCount {
			out.Status = StatusApplyFailed
			out.Detail = fmt.Sprintf("desktop %d unavailable (%d desktops)", *rule.Desktop, snap.DesktopCount)
			return out
		}
		// Assign the desktop before resizing so the switch does not undo the geometry.
		if err := o.backend.AssignDesktop(win.ID, *rule.Desktop); err != nil {
			out.Status = StatusApplyFailed
			out.Detail = fmt.Sprintf("failed to move window to desktop %d: %v", *rule.Desktop, err)
			return out
		}
		snap.Generation++
	}

	if err := o.backend.MoveResize(win.ID, geom); err != nil {
		out.Status = StatusApplyFailed
		out.Detail = fmt.Sprintf("failed to move/resize window: %v", err)
		return out
	}
	snap.Generation++

	out.Status = StatusPlaced
	out.Detail = describe(win, geom, rule.Desktop)
	return out
}

func (o *Orchestrator) log(out Outcome) {
	attrs := []any{"rule", out.RuleName, "status", string(out.Status)}
	if out.Window != nil {
		attrs = append(attrs, "window", fmt.Sprintf("0x%x", uint32(out.Window.ID)))
	}
	if out.Geometry != nil {
		g := out.Geometry
		attrs = append(attrs, "x", g.X, "y", g.Y, "width", g.Width, "height", g.Height)
	}
	attrs = append(attrs, "detail", out.Detail)

	if out.Status == StatusPlaced {
		o.logger.Debug("rule processed", attrs...)
		return
	}
	o.logger.Warn("rule not placed", attrs...)
}

func describe(win MatchedWindow, g platform.Rect, desktop *int) string {
	s := fmt.Sprintf("window 0x%x %q -> %dx%d+%d+%d", uint32(win.ID), win.Title, g.Width, g.Height, g.X, g.Y)
	if desktop != nil {
		s += fmt.Sprintf(" on desktop %d", *desktop)
	}
	return s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
