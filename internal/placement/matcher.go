package placement

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/1broseidon/winpos/internal/config"
	"github.com/1broseidon/winpos/internal/platform"
)

// ProcessResolver maps a process id to its command line or executable path.
type ProcessResolver interface {
	ProcessPath(pid int) (string, error)
}

// Matcher finds the live window a rule refers to.
type Matcher struct {
	procs  ProcessResolver
	logger *slog.Logger
}

// NewMatcher creates a matcher that resolves owning processes through procs.
func NewMatcher(procs ProcessResolver, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = discardLogger()
	}
	return &Matcher{procs: procs, logger: logger}
}

// Match returns the window for rule among windows, which must be in the
// directory's enumeration order.
//
// Title rules return the first window whose title matches the pattern.
// Process rules return the last-enumerated window whose owning process
// command line contains the pattern, i.e. the most recently created one.
func (m *Matcher) Match(rule config.Rule, windows []platform.Window) (MatchedWindow, bool) {
	switch rule.Match.Kind {
	case config.MatchByTitle:
		return m.matchTitle(rule, windows)
	case config.MatchByProcess:
		return m.matchProcess(rule, windows)
	default:
		return MatchedWindow{}, false
	}
}

func (m *Matcher) matchTitle(rule config.Rule, windows []platform.Window) (MatchedWindow, bool) {
	if rule.Match.Title == nil {
		return MatchedWindow{}, false
	}
	for _, w := range windows {
		if rule.Match.Title.MatchString(w.Title) {
			return matched(w), true
		}
	}
	return MatchedWindow{}, false
}

func (m *Matcher) matchProcess(rule config.Rule, windows []platform.Window) (MatchedWindow, bool) {
	if m.procs == nil || rule.Match.Process == "" {
		return MatchedWindow{}, false
	}

	paths := make(map[int]string)
	var found *platform.Window
	for i := range windows {
		w := &windows[i]
		if w.PID <= 0 {
			continue
		}

		path, seen := paths[w.PID]
		if !seen {
			p, err := m.procs.ProcessPath(w.PID)
			if err != nil && !errors.Is(err, platform.ErrProcessNotFound) {
				m.logger.Debug("process lookup failed", "rule", rule.DisplayName(), "pid", w.PID, "error", err)
			}
			path = p
			paths[w.PID] = path
		}

		if path != "" && strings.Contains(path, rule.Match.Process) {
			found = w
		}
	}

	if found == nil {
		return MatchedWindow{}, false
	}
	return matched(*found), true
}

func matched(w platform.Window) MatchedWindow {
	return MatchedWindow{
		ID:     w.ID,
		Title:  w.Title,
		PID:    w.PID,
		Bounds: w.Bounds,
	}
}
