package placement

import (
	"fmt"
	"regexp"

	"github.com/1broseidon/winpos/internal/config"
	"github.com/1broseidon/winpos/internal/platform"
)

type fakeBackend struct {
	screens       []platform.Screen
	screensErr    error
	desktops      int
	desktopsErr   error
	setDesktopErr error
	windows       []platform.Window
	windowsErr    error
	procs         map[int]string
	assignErr     map[platform.WindowID]error
	moveErr       map[platform.WindowID]error

	calls       []string
	windowLists int
}

var _ platform.Backend = (*fakeBackend)(nil)

func (f *fakeBackend) Screens() ([]platform.Screen, error) {
	return f.screens, f.screensErr
}

func (f *fakeBackend) DesktopCount() (int, error) {
	return f.desktops, f.desktopsErr
}

func (f *fakeBackend) SetDesktopCount(n int) error {
	f.calls = append(f.calls, fmt.Sprintf("desktops %d", n))
	if f.setDesktopErr != nil {
		return f.setDesktopErr
	}
	f.desktops = n
	return nil
}

func (f *fakeBackend) Windows() ([]platform.Window, error) {
	f.windowLists++
	if f.windowsErr != nil {
		return nil, f.windowsErr
	}
	out := make([]platform.Window, len(f.windows))
	copy(out, f.windows)
	return out, nil
}

func (f *fakeBackend) ProcessPath(pid int) (string, error) {
	path, ok := f.procs[pid]
	if !ok {
		return "", fmt.Errorf("pid %d: %w", pid, platform.ErrProcessNotFound)
	}
	return path, nil
}

func (f *fakeBackend) MoveResize(id platform.WindowID, r platform.Rect) error {
	f.calls = append(f.calls, fmt.Sprintf("move %d %d,%d %dx%d", id, r.X, r.Y, r.Width, r.Height))
	if err := f.moveErr[id]; err != nil {
		return err
	}
	for i := range f.windows {
		if f.windows[i].ID == id {
			f.windows[i].Bounds = r
		}
	}
	return nil
}

func (f *fakeBackend) AssignDesktop(id platform.WindowID, desktop int) error {
	f.calls = append(f.calls, fmt.Sprintf("assign %d %d", id, desktop))
	return f.assignErr[id]
}

func dualScreens() []platform.Screen {
	return []platform.Screen{
		{Name: "DP-1", X: 1920, Y: 0, Width: 1920, Height: 1080},
		{Name: "DP-0", X: 0, Y: 0, Width: 1920, Height: 1080},
	}
}

func titleRule(name, pattern string) config.Rule {
	return config.Rule{
		Name:  name,
		Match: config.ByTitle(regexp.MustCompile(pattern)),
		Align: config.DefaultAlign,
	}
}

func processRule(name, pattern string) config.Rule {
	return config.Rule{
		Name:  name,
		Match: config.ByProcess(pattern),
		Align: config.DefaultAlign,
	}
}

func intPtr(n int) *int {
	return &n
}

func mustAlign(s string) config.AlignSpec {
	a, err := config.ParseAlign(s)
	if err != nil {
		panic(err)
	}
	return a
}
