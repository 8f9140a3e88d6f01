package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// Client is a managed top-level window as reported by the window manager.
type Client struct {
	ID      xproto.Window
	PID     int
	Title   string
	Desktop int
	X       int
	Y       int
	Width   int
	Height  int
}

// ListClients returns normal application windows from _NET_CLIENT_LIST.
// The client list is kept in initial mapping order, oldest first.
func (c *Connection) ListClients() ([]Client, error) {
	ids, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	clients := make([]Client, 0, len(ids))
	for _, id := range ids {
		if !c.IsNormalWindow(id) {
			continue
		}

		client := Client{ID: id, Title: c.windowTitle(id), Desktop: -1}
		if desktop, err := c.GetWindowDesktop(id); err == nil {
			client.Desktop = desktop
		}
		if pid, err := ewmh.WmPidGet(c.XUtil, id); err == nil {
			client.PID = int(pid)
		}
		if x, y, w, h, ok := c.windowGeometry(id); ok {
			client.X, client.Y, client.Width, client.Height = x, y, w, h
		}
		clients = append(clients, client)
	}
	return clients, nil
}

// windowRequests are the per-window X requests behind MoveResizeWindow and
// SetWindowDesktop.
type windowRequests interface {
	checkWindow(id xproto.Window) error
	unmaximizeWindow(id xproto.Window) error
	requestMoveResize(id xproto.Window, x, y, width, height int) error
	configureWindow(id xproto.Window, x, y, width, height int) error
	requestDesktop(id xproto.Window, desktop int) error
}

var _ windowRequests = (*Connection)(nil)

// MoveResizeWindow moves and resizes a window to the specified geometry.
// It fails when the window no longer exists.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	return moveResize(c, windowID, x, y, width, height)
}

func moveResize(r windowRequests, id xproto.Window, x, y, width, height int) error {
	// Requests go to the root window and succeed for dead windows, so check first.
	if err := r.checkWindow(id); err != nil {
		return err
	}
	// Maximized windows ignore geometry requests on most window managers.
	if err := r.unmaximizeWindow(id); err != nil {
		return fmt.Errorf("failed to unmaximize window 0x%x: %w", uint32(id), err)
	}
	if err := r.requestMoveResize(id, x, y, width, height); err == nil {
		return nil
	}
	// Fallback to configuring the window directly
	if err := r.configureWindow(id, x, y, width, height); err != nil {
		return fmt.Errorf("failed to move window 0x%x: %w", uint32(id), err)
	}
	return nil
}

// checkWindow reports an error when the window has been destroyed.
func (c *Connection) checkWindow(id xproto.Window) error {
	if _, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(id)).Reply(); err != nil {
		return fmt.Errorf("window 0x%x no longer exists: %w", uint32(id), err)
	}
	return nil
}

func (c *Connection) requestMoveResize(id xproto.Window, x, y, width, height int) error {
	return ewmh.MoveresizeWindow(c.XUtil, id, x, y, width, height)
}

func (c *Connection) configureWindow(id xproto.Window, x, y, width, height int) error {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	values := []uint32{uint32(int32(x)), uint32(int32(y)), uint32(width), uint32(height)}
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), id, mask, values).Check()
}

// unmaximizeWindow removes maximized state from a window. A window without
// _NET_WM_STATE has nothing to remove.
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return nil
	}

	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	return len(types) == 0
}

func (c *Connection) windowGeometry(windowID xproto.Window) (x, y, width, height int, ok bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), true
}

// windowTitle returns _NET_WM_NAME, or WM_NAME when the former is unset or
// empty. Titles are returned verbatim.
func (c *Connection) windowTitle(windowID xproto.Window) string {
	return firstTitle(
		func() (string, error) { return ewmh.WmNameGet(c.XUtil, windowID) },
		func() (string, error) { return icccm.WmNameGet(c.XUtil, windowID) },
	)
}

func firstTitle(sources ...func() (string, error)) string {
	for _, get := range sources {
		if title, err := get(); err == nil && title != "" {
			return title
		}
	}
	return ""
}
