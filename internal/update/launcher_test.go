package update

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestShellLauncherLaunch(t *testing.T) {
	exe := filepath.Join(t.TempDir(), "1.0.0.exe")
	if err := os.WriteFile(exe, []byte("MZ"), 0o755); err != nil {
		t.Fatal(err)
	}

	var got []string
	l := &ShellLauncher{
		platform: Platform{OS: "windows"},
		start: func(argv []string) error {
			got = argv
			return nil
		},
	}

	if err := l.Launch(exe); err != nil {
		t.Fatalf("Launch() error = %v", err)
	}

	want := []string{"cmd", "/C", "start", "", exe}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("argv = %v, want %v", got, want)
	}
}

func TestShellLauncherLaunch_Missing(t *testing.T) {
	called := false
	l := &ShellLauncher{
		platform: Detect(),
		start: func(argv []string) error {
			called = true
			return nil
		},
	}

	err := l.Launch(filepath.Join(t.TempDir(), "missing.exe"))

	var launchErr *LaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("Launch() error = %v, want *LaunchError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Launch() error = %v, want wrapped os.ErrNotExist", err)
	}
	if called {
		t.Error("start should not be called for a missing executable")
	}
}

func TestShellLauncherLaunch_StartError(t *testing.T) {
	exe := filepath.Join(t.TempDir(), "1.0.0.exe")
	if err := os.WriteFile(exe, []byte("MZ"), 0o755); err != nil {
		t.Fatal(err)
	}

	startErr := errors.New("exec format error")
	l := &ShellLauncher{
		platform: Detect(),
		start:    func(argv []string) error { return startErr },
	}

	err := l.Launch(exe)
	if !errors.Is(err, startErr) {
		t.Errorf("Launch() error = %v, want %v", err, startErr)
	}
}

func TestShellLauncherLaunch_Directory(t *testing.T) {
	l := &ShellLauncher{platform: Detect(), start: func([]string) error { return nil }}

	var launchErr *LaunchError
	if err := l.Launch(t.TempDir()); !errors.As(err, &launchErr) {
		t.Errorf("Launch() error = %v, want *LaunchError", err)
	}
}
