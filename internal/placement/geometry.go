package placement

import (
	"math"

	"github.com/1broseidon/winpos/internal/config"
	"github.com/1broseidon/winpos/internal/platform"
)

// ResolveGeometry turns a rule's symbolic size and alignment into an
// absolute rectangle on screen. current is the window's present geometry and
// is only consulted for dimensions the rule leaves unset.
//
// The result always lies inside the screen: oversized windows are shrunk to
// the screen extent and shifted back inside instead of failing.
func ResolveGeometry(rule config.Rule, screen platform.Screen, current platform.Rect) platform.Rect {
	width := clamp(resolveSize(rule.Width, screen.Width, current.Width), 0, screen.Width)
	height := clamp(resolveSize(rule.Height, screen.Height, current.Height), 0, screen.Height)

	x := resolveOffset(rule.Align.Horizontal, screen.X, screen.Width, width)
	y := resolveOffset(rule.Align.Vertical, screen.Y, screen.Height, height)

	return platform.Rect{
		X:      clamp(x, screen.X, screen.X+screen.Width-width),
		Y:      clamp(y, screen.Y, screen.Y+screen.Height-height),
		Width:  width,
		Height: height,
	}
}

// resolveSize returns the pixel size of d along an axis of length extent.
// Unset dimensions keep the current size, or fill the axis when the current
// size is unknown.
func resolveSize(d config.Dimension, extent, current int) int {
	switch d.Kind {
	case config.DimensionAbsolute:
		return int(d.Value)
	case config.DimensionPercentage:
		return round(d.Value * float64(extent) / 100)
	default:
		if current > 0 {
			return current
		}
		return extent
	}
}

// resolveOffset returns the leading coordinate of a window of length size.
// Percent places the window's center at that fraction of the axis.
func resolveOffset(a config.AxisAlign, origin, extent, size int) int {
	switch a.Kind {
	case config.AxisCenter:
		return origin + round(float64(extent-size)/2)
	case config.AxisEnd:
		return origin + extent - size
	case config.AxisPercent:
		center := float64(origin) + a.Percent*float64(extent)/100
		return round(center - float64(size)/2)
	default:
		return origin
	}
}

// round rounds to the nearest integer, ties away from zero.
func round(f float64) int {
	return int(math.Round(f))
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
