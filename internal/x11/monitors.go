package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/randr"
)

// Monitor is one active CRTC, named after the outputs it drives.
type Monitor struct {
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// GetMonitors lists active monitors through RandR. Servers without RandR,
// or with no active CRTC, report the root screen as a single monitor.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		return []Monitor{c.rootMonitor()}, nil
	}

	resources, err := randr.GetScreenResourcesCurrent(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		// Cloned outputs share a CRTC and show up as one monitor.
		names := make([]string, 0, len(info.Outputs))
		for _, output := range info.Outputs {
			out, err := randr.GetOutputInfo(conn, output, resources.ConfigTimestamp).Reply()
			if err != nil {
				continue
			}
			names = append(names, string(out.Name))
		}
		name := strings.Join(names, "+")
		if name == "" {
			name = fmt.Sprintf("crtc%d", i)
		}

		monitors = append(monitors, Monitor{
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}

	if len(monitors) == 0 {
		return []Monitor{c.rootMonitor()}, nil
	}
	return monitors, nil
}

func (c *Connection) rootMonitor() Monitor {
	screen := c.XUtil.Screen()
	return Monitor{
		Name:   "default",
		Width:  int(screen.WidthInPixels),
		Height: int(screen.HeightInPixels),
	}
}
