// Package viewer opens written images with the platform's default viewer.
package viewer

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// ErrUnsupportedPlatform is returned when no viewer command is known for the OS.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Opener displays the file at path. Open is the default implementation;
// tests substitute their own.
type Opener func(path string) error

// Open starts the platform viewer for path and returns without waiting for
// it to exit.
func Open(path string) error {
	cmd, err := Command(runtime.GOOS, path)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}
	// Reap the child once the viewer exits.
	go func() { _ = cmd.Wait() }()
	return nil
}

// Command returns the viewer command for goos.
// It supports Linux (xdg-open), macOS (open), and Windows (cmd start).
func Command(goos, path string) (*exec.Cmd, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", path), nil //nolint:gosec // path is an image this program wrote
	case "darwin":
		return exec.Command("open", path), nil //nolint:gosec // path is an image this program wrote
	case "windows":
		// The empty argument is the window title expected by start.
		return exec.Command("cmd", "/c", "start", "", path), nil //nolint:gosec // path is an image this program wrote
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
	}
}
