package config

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrNoMatcher        = errors.New("one of search_name or search_process is required")
	ErrAmbiguousMatcher = errors.New("search_name and search_process are mutually exclusive")
	ErrInvalidPattern   = errors.New("invalid search_name pattern")
	ErrNotInteger       = errors.New("must be an integer")
	ErrNegative         = errors.New("must be >= 0")
	ErrInvalidDimension = errors.New("invalid dimension")
	ErrInvalidAlign     = errors.New("invalid align")
	ErrDuplicateKey     = errors.New("key given more than once")
)

// DimensionKind tags how a Dimension is resolved against a screen.
type DimensionKind int

const (
	DimensionUnset      DimensionKind = iota // Keep the window's current size.
	DimensionAbsolute                        // Pixels.
	DimensionPercentage                      // Percent of the screen extent.
)

// Dimension is a window width or height.
type Dimension struct {
	Kind  DimensionKind
	Value float64
}

// Absolute returns a pixel dimension.
func Absolute(px int) Dimension {
	return Dimension{Kind: DimensionAbsolute, Value: float64(px)}
}

// Percent returns a dimension relative to the screen extent.
func Percent(p float64) Dimension {
	return Dimension{Kind: DimensionPercentage, Value: p}
}

func (d Dimension) String() string {
	switch d.Kind {
	case DimensionAbsolute:
		return strconv.Itoa(int(d.Value))
	case DimensionPercentage:
		return formatPercent(d.Value)
	default:
		return "keep"
	}
}

// ParseDimension parses "800" (pixels) or "50%" / "33.3%" (percent of the
// screen). Percentages must be in (0,100] and pixel counts positive.
func ParseDimension(s string) (Dimension, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Dimension{}, fmt.Errorf("%w: empty value", ErrInvalidDimension)
	}

	if strings.HasSuffix(s, "%") {
		p, err := parsePercent(s)
		if err != nil {
			return Dimension{}, fmt.Errorf("%w: %q: %v", ErrInvalidDimension, s, err)
		}
		if p <= 0 || p > 100 {
			return Dimension{}, fmt.Errorf("%w: percentage %q must be in (0,100]", ErrInvalidDimension, s)
		}
		return Percent(p), nil
	}

	px, err := strconv.Atoi(s)
	if err != nil {
		return Dimension{}, fmt.Errorf("%w: %q is neither a pixel count nor a percentage", ErrInvalidDimension, s)
	}
	if px <= 0 {
		return Dimension{}, fmt.Errorf("%w: pixel count %d must be > 0", ErrInvalidDimension, px)
	}
	return Absolute(px), nil
}

// AxisKind tags an alignment along one screen axis.
type AxisKind int

const (
	AxisStart   AxisKind = iota // Top or left edge.
	AxisCenter                  // Centered.
	AxisEnd                     // Bottom or right edge.
	AxisPercent                 // Window center at Percent of the screen extent.
)

// AxisAlign is the alignment along a single axis.
type AxisAlign struct {
	Kind    AxisKind
	Percent float64
}

// AlignSpec positions a window on both axes.
type AlignSpec struct {
	Vertical   AxisAlign
	Horizontal AxisAlign
}

// DefaultAlign is used when a rule has no align key.
var DefaultAlign = AlignSpec{
	Vertical:   AxisAlign{Kind: AxisStart},
	Horizontal: AxisAlign{Kind: AxisStart},
}

func (a AlignSpec) String() string {
	return formatAxis(a.Vertical, "top", "bottom") + " " + formatAxis(a.Horizontal, "left", "right")
}

// ParseAlign parses "<vertical> <horizontal>", for example "center center",
// "top right" or "60% 100%". Keywords are case-insensitive.
func ParseAlign(s string) (AlignSpec, error) {
	tokens := strings.Fields(s)
	if len(tokens) != 2 {
		return AlignSpec{}, fmt.Errorf("%w: %q must have exactly two tokens: \"<vertical> <horizontal>\"", ErrInvalidAlign, s)
	}

	vertical, verr := parseAxis(tokens[0], "top", "bottom")
	horizontal, herr := parseAxis(tokens[1], "left", "right")
	if verr != nil || herr != nil {
		var errs []error
		if verr != nil {
			errs = append(errs, fmt.Errorf("%w: vertical %v", ErrInvalidAlign, verr))
		}
		if herr != nil {
			errs = append(errs, fmt.Errorf("%w: horizontal %v", ErrInvalidAlign, herr))
		}
		return AlignSpec{}, errors.Join(errs...)
	}
	return AlignSpec{Vertical: vertical, Horizontal: horizontal}, nil
}

func parseAxis(token, start, end string) (AxisAlign, error) {
	switch strings.ToLower(token) {
	case start:
		return AxisAlign{Kind: AxisStart}, nil
	case "center":
		return AxisAlign{Kind: AxisCenter}, nil
	case end:
		return AxisAlign{Kind: AxisEnd}, nil
	}
	if !strings.HasSuffix(token, "%") {
		return AxisAlign{}, fmt.Errorf("%q must be one of %s, center, %s or a percentage", token, start, end)
	}
	p, err := parsePercent(token)
	if err != nil {
		return AxisAlign{}, fmt.Errorf("%q: %v", token, err)
	}
	if p < 0 || p > 100 {
		return AxisAlign{}, fmt.Errorf("%q must be in [0,100]", token)
	}
	return AxisAlign{Kind: AxisPercent, Percent: p}, nil
}

func formatAxis(a AxisAlign, start, end string) string {
	switch a.Kind {
	case AxisCenter:
		return "center"
	case AxisEnd:
		return end
	case AxisPercent:
		return formatPercent(a.Percent)
	default:
		return start
	}
}

func parsePercent(s string) (float64, error) {
	p, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return p, nil
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}

// MatchKind selects how a rule finds its window.
type MatchKind int

const (
	MatchByTitle MatchKind = iota + 1
	MatchByProcess
)

// MatchStrategy is either a title regular expression or a process
// command-line substring, never both.
type MatchStrategy struct {
	Kind    MatchKind
	Title   *regexp.Regexp
	Process string
}

// ByTitle matches windows whose title matches re.
func ByTitle(re *regexp.Regexp) MatchStrategy {
	return MatchStrategy{Kind: MatchByTitle, Title: re}
}

// ByProcess matches windows owned by a process whose command line contains pattern.
func ByProcess(pattern string) MatchStrategy {
	return MatchStrategy{Kind: MatchByProcess, Process: pattern}
}

func (m MatchStrategy) String() string {
	switch m.Kind {
	case MatchByTitle:
		if m.Title == nil {
			return "title:<nil>"
		}
		return "title:" + m.Title.String()
	case MatchByProcess:
		return "process:" + m.Process
	default:
		return "none"
	}
}

// Rule describes how to find one window and where to place it.
type Rule struct {
	Index   int // Position in the rule list.
	Name    string
	Match   MatchStrategy
	Screen  int
	Desktop *int // nil leaves the window's desktop untouched.
	Width   Dimension
	Height  Dimension
	Align   AlignSpec
	Source  Source
}

// DisplayName returns the rule name, or its list position when unnamed.
func (r Rule) DisplayName() string {
	if strings.TrimSpace(r.Name) != "" {
		return r.Name
	}
	return fmt.Sprintf("rules[%d]", r.Index)
}

// MaxDesktop returns the highest desktop index any rule targets, or -1.
func MaxDesktop(rules []Rule) int {
	highest := -1
	for _, r := range rules {
		if r.Desktop != nil && *r.Desktop > highest {
			highest = *r.Desktop
		}
	}
	return highest
}
