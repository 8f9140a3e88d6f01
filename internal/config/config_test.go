package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadFromPath_RuleList(t *testing.T) {
	path := writeConfig(t, "config.yaml", strings.Join([]string{
		"- name: Spotify",
		"  search_name: \"^Spotify$\"",
		"  screen: 1",
		"  desktop: 2",
		"  width: 40%",
		"  height: 60%",
		"  align: 60% 100%",
		"- name: Editor",
		"  search_process: /usr/bin/code",
		"  width: 1200",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Rules) != 2 || len(res.Rejected) != 0 {
		t.Fatalf("expected 2 valid rules, got %d valid / %d rejected", len(res.Rules), len(res.Rejected))
	}

	spotify := res.Rules[0]
	if spotify.Match.Kind != MatchByTitle || spotify.Match.Title.String() != "^Spotify$" {
		t.Fatalf("expected title matcher, got %s", spotify.Match)
	}
	if spotify.Screen != 1 || spotify.Desktop == nil || *spotify.Desktop != 2 {
		t.Fatalf("expected screen 1 desktop 2, got screen %d desktop %v", spotify.Screen, spotify.Desktop)
	}
	if spotify.Width != Percent(40) || spotify.Height != Percent(60) {
		t.Fatalf("unexpected size %s x %s", spotify.Width, spotify.Height)
	}
	want := AlignSpec{
		Vertical:   AxisAlign{Kind: AxisPercent, Percent: 60},
		Horizontal: AxisAlign{Kind: AxisPercent, Percent: 100},
	}
	if spotify.Align != want {
		t.Fatalf("expected align %s, got %s", want, spotify.Align)
	}
	if spotify.Source.Line != 1 {
		t.Fatalf("expected rule source line 1, got %d", spotify.Source.Line)
	}

	editor := res.Rules[1]
	if editor.Match.Kind != MatchByProcess || editor.Match.Process != "/usr/bin/code" {
		t.Fatalf("expected process matcher, got %s", editor.Match)
	}
	if editor.Width != Absolute(1200) || editor.Height.Kind != DimensionUnset {
		t.Fatalf("unexpected size %s x %s", editor.Width, editor.Height)
	}
	if editor.Desktop != nil {
		t.Fatalf("expected no desktop, got %d", *editor.Desktop)
	}
	if editor.Align != DefaultAlign {
		t.Fatalf("expected default align, got %s", editor.Align)
	}
	if editor.Index != 1 {
		t.Fatalf("expected index 1, got %d", editor.Index)
	}
}

func TestLoadFromPath_JSONDocument(t *testing.T) {
	path := writeConfig(t, "config.json", `[
  {"name": "Terminal", "search_name": "Alacritty", "screen": 0, "desktop": 1, "width": "50%", "height": 900, "align": "center center"}
]`)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(res.Rules))
	}
	r := res.Rules[0]
	if r.Width != Percent(50) || r.Height != Absolute(900) {
		t.Fatalf("unexpected size %s x %s", r.Width, r.Height)
	}
	if r.Align.String() != "center center" {
		t.Fatalf("expected center center, got %s", r.Align)
	}
}

func TestLoadFromPath_MappingWithSettings(t *testing.T) {
	path := writeConfig(t, "config.yaml", strings.Join([]string{
		"backend: xdotool",
		"log_level: DEBUG",
		"future_option: true",
		"rules:",
		"  - search_name: Firefox",
		"    shortcut: ctrl+1",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Settings.Backend != "xdotool" || res.Settings.LogLevel != "debug" {
		t.Fatalf("unexpected settings %+v", res.Settings)
	}
	if len(res.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(res.Rules))
	}
	if got := strings.Join(res.Ignored, ","); got != "future_option,rules[0].shortcut" {
		t.Fatalf("expected unknown keys to be ignored and recorded, got %q", got)
	}
	if res.Rules[0].DisplayName() != "rules[0]" {
		t.Fatalf("expected positional display name, got %q", res.Rules[0].DisplayName())
	}
}

func TestLoadFromPath_InvalidSettingIsFatal(t *testing.T) {
	path := writeConfig(t, "config.yaml", "backend: wayland\nrules: []\n")

	_, err := LoadFromPath(path)
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if !strings.Contains(err.Error(), "backend") || !strings.Contains(err.Error(), path+":1:10") {
		t.Fatalf("expected located backend error, got %v", err)
	}
}

func TestLoadFromPath_EmptyDocumentHasNoRules(t *testing.T) {
	for _, data := range []string{"", "# nothing\n", "[]\n", "rules:\n"} {
		path := writeConfig(t, "config.yaml", data)
		res, err := LoadFromPath(path)
		if err != nil {
			t.Fatalf("load %q: %v", data, err)
		}
		if res.Total() != 0 {
			t.Fatalf("expected no rules for %q, got %d", data, res.Total())
		}
	}
}

func TestLoadFromPath_MalformedDocument(t *testing.T) {
	path := writeConfig(t, "config.yaml", "- name: [unterminated\n")

	_, err := LoadFromPath(path)
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ScalarTopLevelRejected(t *testing.T) {
	path := writeConfig(t, "config.yaml", "just a string\n")

	_, err := LoadFromPath(path)
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", err)
	}
}

func TestLoadFromPath_CollectsEveryProblemOfARule(t *testing.T) {
	path := writeConfig(t, "config.yaml", strings.Join([]string{
		"- name: Good",
		"  search_name: Firefox",
		"- name: Broken",
		"  screen: -1",
		"  desktop: two",
		"  width: 150%",
		"  height: 0",
		"  align: middle nowhere",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("expected fail-soft load, got %v", err)
	}
	if len(res.Rules) != 1 || res.Rules[0].Name != "Good" {
		t.Fatalf("expected the good rule to survive, got %+v", res.Rules)
	}
	if len(res.Rejected) != 1 {
		t.Fatalf("expected 1 rejected rule, got %d", len(res.Rejected))
	}

	rerr := res.Rejected[0]
	if rerr.Index != 1 || rerr.Name != "Broken" {
		t.Fatalf("unexpected rejected rule %d %q", rerr.Index, rerr.Name)
	}
	// screen, desktop, width, height, align, missing matcher
	if len(rerr.Problems) != 6 {
		t.Fatalf("expected 6 problems, got %d: %v", len(rerr.Problems), rerr)
	}
	for _, target := range []error{ErrNegative, ErrNotInteger, ErrInvalidDimension, ErrInvalidAlign, ErrNoMatcher} {
		if !errors.Is(rerr, target) {
			t.Fatalf("expected problems to include %v, got %v", target, rerr)
		}
	}
	if !strings.Contains(rerr.Error(), path+":4:11: rules[1].screen") {
		t.Fatalf("expected located screen problem, got %v", rerr)
	}
}

func TestLoadFromPath_AllRulesInvalidIsFatal(t *testing.T) {
	path := writeConfig(t, "config.yaml", strings.Join([]string{
		"- name: Nothing to match",
		"- name: Both",
		"  search_name: Foo",
		"  search_process: foo",
		"- just a string",
		"",
	}, "\n"))

	_, err := LoadFromPath(path)
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if len(cerr.Rejected) != 3 {
		t.Fatalf("expected 3 rejected rules, got %d", len(cerr.Rejected))
	}
	if !errors.Is(err, ErrNoMatcher) || !errors.Is(err, ErrAmbiguousMatcher) {
		t.Fatalf("expected matcher errors, got %v", err)
	}
}

func TestLoadFromPath_DuplicateKeyRejectsRule(t *testing.T) {
	path := writeConfig(t, "config.yaml", strings.Join([]string{
		"- name: Twice",
		"  search_name: Terminal",
		"  screen: 0",
		"  screen: 3",
		"- search_name: ok",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Rules) != 1 || len(res.Rejected) != 1 {
		t.Fatalf("expected 1 valid and 1 rejected rule, got %d and %d", len(res.Rules), len(res.Rejected))
	}
	rerr := res.Rejected[0]
	if !errors.Is(rerr, ErrDuplicateKey) {
		t.Fatalf("expected duplicate key problem, got %v", rerr)
	}
	if !strings.Contains(rerr.Error(), path+":4:3: rules[0].screen") {
		t.Fatalf("expected the repeated key to be located, got %v", rerr)
	}
}

func TestLoadFromPath_InvalidRegexp(t *testing.T) {
	path := writeConfig(t, "config.yaml", "- search_name: \"(unclosed\"\n- search_name: ok\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Rejected) != 1 || !errors.Is(res.Rejected[0], ErrInvalidPattern) {
		t.Fatalf("expected invalid pattern rejection, got %+v", res.Rejected)
	}
}

func TestParseDimension(t *testing.T) {
	valid := map[string]Dimension{
		"800":    Absolute(800),
		" 50% ":  Percent(50),
		"33.5%":  Percent(33.5),
		"100%":   Percent(100),
		"0.001%": Percent(0.001),
	}
	for in, want := range valid {
		got, err := ParseDimension(in)
		if err != nil {
			t.Fatalf("ParseDimension(%q): unexpected error %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseDimension(%q): expected %+v, got %+v", in, want, got)
		}
	}

	for _, in := range []string{"", "0%", "-5%", "100.5%", "abc%", "%", "0", "-10", "12px", "NaN%"} {
		if _, err := ParseDimension(in); !errors.Is(err, ErrInvalidDimension) {
			t.Fatalf("ParseDimension(%q): expected ErrInvalidDimension, got %v", in, err)
		}
	}
}

func TestParseAlign(t *testing.T) {
	got, err := ParseAlign("Bottom RIGHT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Vertical.Kind != AxisEnd || got.Horizontal.Kind != AxisEnd {
		t.Fatalf("expected bottom right, got %s", got)
	}

	got, err = ParseAlign("0% center")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Vertical != (AxisAlign{Kind: AxisPercent, Percent: 0}) || got.Horizontal.Kind != AxisCenter {
		t.Fatalf("expected 0%% center, got %s", got)
	}

	for _, in := range []string{"", "center", "top left extra", "left top", "101% center", "top 50", "up left"} {
		if _, err := ParseAlign(in); !errors.Is(err, ErrInvalidAlign) {
			t.Fatalf("ParseAlign(%q): expected ErrInvalidAlign, got %v", in, err)
		}
	}
}

func TestMaxDesktop(t *testing.T) {
	two, five := 2, 5
	rules := []Rule{{}, {Desktop: &five}, {Desktop: &two}}
	if got := MaxDesktop(rules); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := MaxDesktop(nil); got != -1 {
		t.Fatalf("expected -1 for no rules, got %d", got)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv(configPathEnv, "")
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	if path != filepath.Join(dir, "winpos", "config.yaml") {
		t.Fatalf("unexpected default path %q", path)
	}

	if err := os.MkdirAll(filepath.Join(dir, "winpos"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	jsonPath := filepath.Join(dir, "winpos", "config.json")
	if err := os.WriteFile(jsonPath, []byte("[]"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if path, _ := DefaultConfigPath(); path != jsonPath {
		t.Fatalf("expected legacy json path, got %q", path)
	}

	t.Setenv(configPathEnv, "/etc/winpos.yaml")
	if path, _ := DefaultConfigPath(); path != "/etc/winpos.yaml" {
		t.Fatalf("expected env override, got %q", path)
	}
}
