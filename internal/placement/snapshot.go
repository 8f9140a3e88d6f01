package placement

import (
	"errors"

	"github.com/1broseidon/winpos/internal/platform"
)

// Snapshot is the environment captured once at the start of a pass.
// Generation increases every time the pass mutates the environment, so
// observers can tell which window listings may be stale.
type Snapshot struct {
	Generation   int
	Screens      []platform.Screen
	DesktopCount int
}

// Screen returns the screen with the given index.
func (s *Snapshot) Screen(index int) (platform.Screen, bool) {
	if index < 0 || index >= len(s.Screens) {
		return platform.Screen{}, false
	}
	return s.Screens[index], true
}

// TakeSnapshot queries screens and the desktop count.
func TakeSnapshot(backend platform.Backend) (*Snapshot, error) {
	screens, err := backend.Screens()
	if err != nil {
		return nil, &EnvironmentError{Op: "list screens", Err: err}
	}
	if len(screens) == 0 {
		return nil, &EnvironmentError{Op: "list screens", Err: errors.New("no active screens")}
	}

	desktops, err := backend.DesktopCount()
	if err != nil {
		return nil, &EnvironmentError{Op: "get desktop count", Err: err}
	}

	return &Snapshot{
		Screens:      platform.SortScreens(screens),
		DesktopCount: desktops,
	}, nil
}
