//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/winpos/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn  *x11.Connection
	procs ProcessResolver
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, procs ProcessResolver) *LinuxBackend {
	return &LinuxBackend{conn: conn, procs: procs}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay(procs ProcessResolver) (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn, procs), nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Screens returns all active monitors ordered left to right.
func (b *LinuxBackend) Screens() ([]Screen, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	screens := make([]Screen, 0, len(monitors))
	for _, m := range monitors {
		screens = append(screens, Screen{
			Name:   m.Name,
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		})
	}
	return SortScreens(screens), nil
}

// DesktopCount returns the number of virtual desktops.
func (b *LinuxBackend) DesktopCount() (int, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	return conn.GetDesktopCount()
}

// SetDesktopCount requests n virtual desktops from the window manager.
func (b *LinuxBackend) SetDesktopCount(n int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SetDesktopCount(n)
}

// Windows lists managed normal windows in client list order.
func (b *LinuxBackend) Windows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.ListClients()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, c := range clients {
		windows = append(windows, Window{
			ID:      WindowID(c.ID),
			PID:     c.PID,
			Title:   c.Title,
			Desktop: c.Desktop,
			Bounds: Rect{
				X:      c.X,
				Y:      c.Y,
				Width:  c.Width,
				Height: c.Height,
			},
		})
	}
	return windows, nil
}

// ProcessPath resolves pid through the configured process resolver.
func (b *LinuxBackend) ProcessPath(pid int) (string, error) {
	if b == nil || b.procs == nil {
		return "", fmt.Errorf("no process resolver configured")
	}
	return b.procs.ProcessPath(pid)
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	return conn.MoveResizeWindow(
		xproto.Window(windowID),
		bounds.X,
		bounds.Y,
		bounds.Width,
		bounds.Height,
	)
}

// AssignDesktop moves a window to the given virtual desktop.
func (b *LinuxBackend) AssignDesktop(windowID WindowID, desktop int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SetWindowDesktop(xproto.Window(windowID), desktop)
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
