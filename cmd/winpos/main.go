package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/1broseidon/winpos/internal/config"
	"github.com/1broseidon/winpos/internal/placement"
	"github.com/1broseidon/winpos/internal/platform"
	"github.com/1broseidon/winpos/internal/procfs"
	"github.com/1broseidon/winpos/internal/report"
	"github.com/1broseidon/winpos/internal/xdotool"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		switch args[0] {
		case "validate":
			return runValidate(args[1:], stdout, stderr)
		case "screens":
			return runScreens(args[1:], stdout, stderr)
		case "windows":
			return runWindows(args[1:], stdout, stderr)
		case "help":
			printMainUsage(stdout)
			return exitOK
		default:
			fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
			printMainUsage(stderr)
			return exitUsage
		}
	}
	return runPlace(args, stdout, stderr)
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: winpos [options]")
	fmt.Fprintln(w, "       winpos <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Places windows on screens and desktops according to the configured rules.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --config PATH       Config file (default: $WINPOS_CONFIG or ~/.config/winpos/config.yaml)")
	fmt.Fprintln(w, "  --backend NAME      auto, x11 or xdotool (default: auto)")
	fmt.Fprintln(w, "  --dry-run           Resolve rules without moving any window")
	fmt.Fprintln(w, "  --log-level LEVEL   debug, info, warn or error (default: info)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  validate            Validate the configuration and list its rules")
	fmt.Fprintln(w, "  screens             List detected screens in index order")
	fmt.Fprintln(w, "  windows             List windows with their owning process")
}

// runOptions are the flags shared by every command that talks to the display.
type runOptions struct {
	configPath string
	backend    string
	logLevel   string
	dryRun     bool
}

func (o *runOptions) register(fs *flag.FlagSet, withConfig bool) {
	if withConfig {
		fs.StringVar(&o.configPath, "config", "", "Config file path")
	}
	fs.StringVar(&o.backend, "backend", "", "Backend: auto, x11 or xdotool")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn or error")
}

// applySettings fills options the command line left empty from the config
// file, then from defaults.
func (o *runOptions) applySettings(s config.Settings) {
	if o.backend == "" {
		o.backend = s.Backend
	}
	if o.backend == "" {
		o.backend = "auto"
	}
	if o.logLevel == "" {
		o.logLevel = s.LogLevel
	}
	if o.logLevel == "" {
		o.logLevel = "info"
	}
}

func (o *runOptions) validate() error {
	switch o.backend {
	case "", "auto", "x11", "xdotool":
	default:
		return fmt.Errorf("invalid --backend %q: must be auto, x11 or xdotool", o.backend)
	}
	if o.logLevel != "" {
		if _, err := parseLevel(o.logLevel); err != nil {
			return err
		}
	}
	return nil
}

func runPlace(args []string, stdout, stderr io.Writer) int {
	var opts runOptions
	fs := flag.NewFlagSet("winpos", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printMainUsage(stderr) }
	opts.register(fs, true)
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Resolve rules without moving any window")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n\n", strings.Join(fs.Args(), " "))
		printMainUsage(stderr)
		return exitUsage
	}
	if err := opts.validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	res, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}
	opts.applySettings(res.Settings)
	logger := newLogger(stderr, opts.logLevel)
	logger.Debug("configuration loaded",
		"file", res.File,
		"rules", len(res.Rules),
		"rejected", len(res.Rejected))
	if len(res.Ignored) > 0 {
		logger.Info("ignoring unknown keys", "keys", strings.Join(res.Ignored, ","))
	}
	report.NewPrinter(stderr).Rejected(res.Rejected)

	backend, closeBackend, err := openBackend(opts.backend, logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}
	defer closeBackend()

	orch := placement.NewOrchestrator(backend, placement.Options{DryRun: opts.dryRun, Logger: logger})
	result, err := orch.Run(res.Rules)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}

	report.NewPrinter(stdout).Result(result)
	if !result.OK() {
		return exitFail
	}
	return exitOK
}

func runValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: winpos validate [--config PATH]")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Validate the configuration and list its rules.")
	}
	path := fs.String("config", "", "Config file path")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}
	report.NewPrinter(stdout).Rules(res)
	if len(res.Rejected) > 0 {
		return exitFail
	}
	return exitOK
}

func runScreens(args []string, stdout, stderr io.Writer) int {
	backend, closeBackend, code := openFromFlags("screens", args, stderr)
	if backend == nil {
		return code
	}
	defer closeBackend()

	snap, err := placement.TakeSnapshot(backend)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}
	report.NewPrinter(stdout).Screens(snap.Screens, snap.DesktopCount)
	return exitOK
}

func runWindows(args []string, stdout, stderr io.Writer) int {
	backend, closeBackend, code := openFromFlags("windows", args, stderr)
	if backend == nil {
		return code
	}
	defer closeBackend()

	windows, err := backend.Windows()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}
	report.NewPrinter(stdout).Windows(windows, backend)
	return exitOK
}

// openFromFlags parses the flags of a listing command and opens its backend.
// A nil backend means the command is done and should return code.
func openFromFlags(name string, args []string, stderr io.Writer) (platform.Backend, func(), int) {
	var opts runOptions
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: winpos %s [--backend NAME] [--log-level LEVEL]\n", name)
	}
	opts.register(fs, false)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, exitOK
		}
		return nil, nil, exitUsage
	}
	if err := opts.validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return nil, nil, exitUsage
	}
	opts.applySettings(config.Settings{})

	backend, closeBackend, err := openBackend(opts.backend, newLogger(stderr, opts.logLevel))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return nil, nil, exitFail
	}
	return backend, closeBackend, exitOK
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

// openBackend is replaced in tests.
var openBackend = openDisplayBackend

func openDisplayBackend(name string, logger *slog.Logger) (platform.Backend, func(), error) {
	procs := procfs.NewResolver(procfs.DefaultRoot)

	switch name {
	case "xdotool":
		if missing := xdotool.MissingTools(); len(missing) > 0 {
			return nil, nil, fmt.Errorf("xdotool backend unavailable: missing %s", strings.Join(missing, ", "))
		}
		return xdotool.NewBackend(procs), func() {}, nil
	case "x11":
		b, err := platform.NewLinuxBackendFromDisplay(procs)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Disconnect, nil
	default:
		b, err := platform.NewLinuxBackendFromDisplay(procs)
		if err == nil {
			return b, b.Disconnect, nil
		}
		if !xdotool.Available() {
			return nil, nil, err
		}
		logger.Warn("x11 backend unavailable, falling back to xdotool", "error", err)
		return xdotool.NewBackend(procs), func() {}, nil
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q: must be debug, info, warn or error", s)
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl, err := parseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
	}))
}
