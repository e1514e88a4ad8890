package update

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ShellLauncher starts the application executable through the platform shell
type ShellLauncher struct {
	platform Platform
	start    func(argv []string) error
}

// NewShellLauncher creates a launcher for the current platform
func NewShellLauncher() *ShellLauncher {
	return &ShellLauncher{
		platform: Detect(),
		start:    startDetached,
	}
}

// Launch starts the executable at path without waiting for it to exit.
// A missing file is reported as a *LaunchError wrapping os.ErrNotExist.
func (l *ShellLauncher) Launch(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &LaunchError{Path: path, Err: err}
	}
	if info.IsDir() {
		return &LaunchError{Path: path, Err: errors.New("is a directory")}
	}

	if err := l.start(l.platform.ShellOpenCommand(path)); err != nil {
		return &LaunchError{Path: path, Err: err}
	}
	return nil
}

// startDetached starts argv and releases the child process
func startDetached(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
