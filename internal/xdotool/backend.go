// Package xdotool drives the windowing environment through the xrandr,
// xdotool and wmctrl command-line tools.
package xdotool

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/1broseidon/winpos/internal/platform"
)

// Runner executes a command and returns its standard output.
type Runner func(name string, args ...string) ([]byte, error)

// requiredTools lists the binaries the backend shells out to.
var requiredTools = []string{"xrandr", "xdotool", "wmctrl"}

// Backend implements platform.Backend on top of command-line tools.
type Backend struct {
	run   Runner
	procs platform.ProcessResolver
}

var _ platform.Backend = (*Backend)(nil)

// NewBackend returns a backend that runs the real tools.
func NewBackend(procs platform.ProcessResolver) *Backend {
	return NewBackendWithRunner(execRunner, procs)
}

// NewBackendWithRunner returns a backend that runs commands through run.
func NewBackendWithRunner(run Runner, procs platform.ProcessResolver) *Backend {
	return &Backend{run: run, procs: procs}
}

// Available reports whether every required tool is on PATH.
func Available() bool {
	return len(MissingTools()) == 0
}

// MissingTools returns the required tools that are not on PATH.
func MissingTools() []string {
	var missing []string
	for _, tool := range requiredTools {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	return missing
}

func execRunner(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return out, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
			}
		}
		return out, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// Screens parses `xrandr --listactivemonitors`.
func (b *Backend) Screens() ([]platform.Screen, error) {
	out, err := b.run("xrandr", "--listactivemonitors")
	if err != nil {
		return nil, err
	}
	screens, err := ParseActiveMonitors(string(out))
	if err != nil {
		return nil, err
	}
	return platform.SortScreens(screens), nil
}

// DesktopCount runs `xdotool get_num_desktops`.
func (b *Backend) DesktopCount() (int, error) {
	out, err := b.run("xdotool", "get_num_desktops")
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, fmt.Errorf("unexpected desktop count %q: %w", strings.TrimSpace(string(out)), err)
	}
	return count, nil
}

// SetDesktopCount runs `xdotool set_num_desktops n`.
func (b *Backend) SetDesktopCount(n int) error {
	if n < 1 {
		return fmt.Errorf("desktop count must be >= 1, got %d", n)
	}
	_, err := b.run("xdotool", "set_num_desktops", strconv.Itoa(n))
	return err
}

// Windows parses `wmctrl -lpG`, which lists windows in stacking-list order.
func (b *Backend) Windows() ([]platform.Window, error) {
	out, err := b.run("wmctrl", "-lpG")
	if err != nil {
		return nil, err
	}
	return ParseWindowList(string(out))
}

// ProcessPath resolves pid through the configured process resolver.
func (b *Backend) ProcessPath(pid int) (string, error) {
	if b.procs == nil {
		return "", fmt.Errorf("no process resolver configured")
	}
	return b.procs.ProcessPath(pid)
}

// MoveResize runs `xdotool windowmove` followed by `xdotool windowsize`.
func (b *Backend) MoveResize(windowID platform.WindowID, bounds platform.Rect) error {
	id := strconv.FormatUint(uint64(windowID), 10)
	if _, err := b.run("xdotool", "windowmove", id, strconv.Itoa(bounds.X), strconv.Itoa(bounds.Y)); err != nil {
		return err
	}
	_, err := b.run("xdotool", "windowsize", id, strconv.Itoa(bounds.Width), strconv.Itoa(bounds.Height))
	return err
}

// AssignDesktop runs `xdotool set_desktop_for_window`.
func (b *Backend) AssignDesktop(windowID platform.WindowID, desktop int) error {
	id := strconv.FormatUint(uint64(windowID), 10)
	_, err := b.run("xdotool", "set_desktop_for_window", id, strconv.Itoa(desktop))
	return err
}
