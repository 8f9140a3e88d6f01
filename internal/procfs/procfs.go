// Package procfs resolves process ids to the command line or executable
// path of the owning process by reading /proc.
package procfs

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/1broseidon/winpos/internal/platform"
)

// DefaultRoot is the procfs mount point on Linux.
const DefaultRoot = "/proc"

// Resolver reads process information from a procfs tree.
type Resolver struct {
	root string
}

// NewResolver returns a Resolver rooted at root, or DefaultRoot when root is empty.
func NewResolver(root string) *Resolver {
	if root == "" {
		root = DefaultRoot
	}
	return &Resolver{root: root}
}

// ProcessPath returns the full command line of pid with arguments separated
// by single spaces, the way `pgrep -f` sees it, followed by the target of
// the executable link when the command line does not already contain it.
// Kernel threads and zombies have an empty cmdline and yield the executable
// alone. An unreadable executable link (another user's process) is skipped.
// A pid that no longer exists yields an error wrapping platform.ErrProcessNotFound.
func (r *Resolver) ProcessPath(pid int) (string, error) {
	if pid <= 0 {
		return "", errors.Wrapf(platform.ErrProcessNotFound, "invalid pid %d", pid)
	}
	dir := filepath.Join(r.root, strconv.Itoa(pid))

	data, err := os.ReadFile(filepath.Join(dir, "cmdline"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(platform.ErrProcessNotFound, "pid %d", pid)
		}
		return "", errors.Wrapf(err, "failed to read cmdline of pid %d", pid)
	}
	cmdline := strings.TrimSpace(strings.ReplaceAll(strings.TrimRight(string(data), "\x00"), "\x00", " "))

	exe, err := os.Readlink(filepath.Join(dir, "exe"))
	if err != nil {
		if cmdline != "" {
			return cmdline, nil
		}
		if os.IsNotExist(err) {
			return "", errors.Wrapf(platform.ErrProcessNotFound, "pid %d", pid)
		}
		return "", errors.Wrapf(err, "failed to resolve executable of pid %d", pid)
	}

	switch {
	case cmdline == "":
		return exe, nil
	case strings.Contains(cmdline, exe):
		return cmdline, nil
	default:
		return cmdline + " " + exe, nil
	}
}
