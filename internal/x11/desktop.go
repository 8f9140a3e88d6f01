package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// sourceIndication marks client messages as coming from a pager/direct action.
const sourceIndication = 2

// GetDesktopCount returns the number of virtual desktops.
func (c *Connection) GetDesktopCount() (int, error) {
	count, err := ewmh.NumberOfDesktopsGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get desktop count: %w", err)
	}
	return int(count), nil
}

// SetDesktopCount asks the window manager to change the number of virtual
// desktops via a _NET_NUMBER_OF_DESKTOPS client message.
func (c *Connection) SetDesktopCount(count int) error {
	if count < 1 {
		return fmt.Errorf("desktop count must be >= 1, got %d", count)
	}
	if err := c.sendRootMessage(c.Root, "_NET_NUMBER_OF_DESKTOPS", []uint32{uint32(count)}); err != nil {
		return fmt.Errorf("failed to set desktop count: %w", err)
	}
	return nil
}

// GetWindowDesktop returns the desktop number a window is on.
// Returns -1 for "sticky" windows (visible on all desktops).
func (c *Connection) GetWindowDesktop(windowID xproto.Window) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID)
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	if desktop == 0xFFFFFFFF {
		return -1, nil
	}
	return int(desktop), nil
}

// SetWindowDesktop moves a window to the specified virtual desktop. It
// fails when the window no longer exists.
func (c *Connection) SetWindowDesktop(windowID xproto.Window, desktop int) error {
	return assignDesktop(c, windowID, desktop)
}

func assignDesktop(r windowRequests, id xproto.Window, desktop int) error {
	if desktop < 0 {
		return fmt.Errorf("desktop must be >= 0, got %d", desktop)
	}
	if err := r.checkWindow(id); err != nil {
		return err
	}
	if err := r.requestDesktop(id, desktop); err != nil {
		return fmt.Errorf("failed to move window 0x%x to desktop %d: %w", uint32(id), desktop, err)
	}
	return nil
}

// requestDesktop sends _NET_WM_DESKTOP. The message is built by hand because
// the xgbutil ewmh.WmDesktopReq helper panics on this library version (uint
// vs int type assertion).
func (c *Connection) requestDesktop(id xproto.Window, desktop int) error {
	return c.sendRootMessage(id, "_NET_WM_DESKTOP", []uint32{uint32(desktop), sourceIndication})
}
