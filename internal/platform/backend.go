package platform

import (
	"errors"
	"sort"
)

// ErrProcessNotFound is returned by ProcessPath when the process has exited.
var ErrProcessNotFound = errors.New("process not found")

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Screen describes one physical display. Index 0 is the leftmost screen.
type Screen struct {
	Index  int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Bounds returns the screen rectangle.
func (s Screen) Bounds() Rect {
	return Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID      WindowID
	PID     int
	Title   string
	Desktop int // -1 when the window is on all desktops
	Bounds  Rect
}

// ProcessResolver maps a process id to its command line or executable path.
type ProcessResolver interface {
	ProcessPath(pid int) (string, error)
}

// Backend abstracts the windowing environment. Windows returns windows in
// the environment's enumeration order, which callers rely on for tie-breaks.
type Backend interface {
	Screens() ([]Screen, error)
	DesktopCount() (int, error)
	SetDesktopCount(n int) error
	Windows() ([]Window, error)
	ProcessPath(pid int) (string, error)
	MoveResize(windowID WindowID, bounds Rect) error
	AssignDesktop(windowID WindowID, desktop int) error
}

// SortScreens orders screens left to right (ties broken top to bottom) and
// renumbers their indexes to match.
func SortScreens(screens []Screen) []Screen {
	out := make([]Screen, len(screens))
	copy(out, screens)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	for i := range out {
		out[i].Index = i
	}
	return out
}
