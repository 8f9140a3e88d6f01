package xdotool

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/1broseidon/winpos/internal/platform"
)

// monitorLine matches one monitor of `xrandr --listactivemonitors`:
//
//	0: +*DP-2 3440/820x1440/346+2560+0  DP-2
var monitorLine = regexp.MustCompile(`^\s*(\d+):\s+\+?\*?(\S+)\s+(\d+)/\d+x(\d+)/\d+([+-]\d+)([+-]\d+)(?:\s+(\S+))?\s*$`)

// ParseActiveMonitors parses the output of `xrandr --listactivemonitors`.
// Screens are returned in xrandr order with their xrandr index.
func ParseActiveMonitors(out string) ([]platform.Screen, error) {
	var screens []platform.Screen
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "Monitors:") {
			continue
		}
		m := monitorLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		ints := make([]int, 0, 5)
		for _, s := range []string{m[1], m[3], m[4], m[5], m[6]} {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("invalid monitor line %q: %w", strings.TrimSpace(line), err)
			}
			ints = append(ints, n)
		}

		name := m[7]
		if name == "" {
			name = m[2]
		}
		screens = append(screens, platform.Screen{
			Index:  ints[0],
			Name:   name,
			Width:  ints[1],
			Height: ints[2],
			X:      ints[3],
			Y:      ints[4],
		})
	}
	if len(screens) == 0 {
		return nil, fmt.Errorf("no active monitors in xrandr output")
	}
	return screens, nil
}

// ParseWindowList parses the output of `wmctrl -lpG`:
//
//	0x03a00003  0 12345  10 20  800 600 host Title with spaces
//
// Lines that cannot be parsed are skipped.
func ParseWindowList(out string) ([]platform.Window, error) {
	var windows []platform.Window
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, title := splitFields(line, 8)
		if len(fields) < 8 {
			continue
		}

		id, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(fields[0]), "0x"), 16, 32)
		if err != nil {
			continue
		}
		nums := make([]int, 0, 6)
		ok := true
		for _, s := range fields[1:7] {
			n, err := strconv.Atoi(s)
			if err != nil {
				ok = false
				break
			}
			nums = append(nums, n)
		}
		if !ok {
			continue
		}

		windows = append(windows, platform.Window{
			ID:      platform.WindowID(id),
			Desktop: nums[0],
			PID:     nums[1],
			Title:   title,
			Bounds: platform.Rect{
				X:      nums[2],
				Y:      nums[3],
				Width:  nums[4],
				Height: nums[5],
			},
		})
	}
	return windows, nil
}

// splitFields consumes up to n whitespace-separated fields from s and
// returns them along with the untouched remainder of the line.
func splitFields(s string, n int) ([]string, string) {
	fields := make([]string, 0, n)
	rest := s
	for len(fields) < n {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			break
		}
		end := strings.IndexAny(rest, " \t")
		if end < 0 {
			fields = append(fields, rest)
			rest = ""
			break
		}
		fields = append(fields, rest[:end])
		rest = rest[end:]
	}
	return fields, strings.TrimRight(strings.TrimLeft(rest, " \t"), "\r")
}
