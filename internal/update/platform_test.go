package update

import (
	"reflect"
	"runtime"
	"testing"
)

func TestDetect(t *testing.T) {
	p := Detect()

	if p.OS != runtime.GOOS {
		t.Errorf("OS mismatch: got %s, want %s", p.OS, runtime.GOOS)
	}

	if p.Arch != runtime.GOARCH {
		t.Errorf("Arch mismatch: got %s, want %s", p.Arch, runtime.GOARCH)
	}
}

func TestPlatformShellOpenCommand(t *testing.T) {
	tests := []struct {
		name string
		p    Platform
		want []string
	}{
		{
			name: "windows",
			p:    Platform{OS: "windows", Arch: "amd64"},
			want: []string{"cmd", "/C", "start", "", `C:\app\download\1.0.exe`},
		},
		{
			name: "darwin",
			p:    Platform{OS: "darwin", Arch: "arm64"},
			want: []string{"open", `C:\app\download\1.0.exe`},
		},
		{
			name: "linux",
			p:    Platform{OS: "linux", Arch: "amd64"},
			want: []string{`C:\app\download\1.0.exe`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.p.ShellOpenCommand(`C:\app\download\1.0.exe`)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ShellOpenCommand() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlatformIsWindows(t *testing.T) {
	if !(Platform{OS: "windows"}).IsWindows() {
		t.Error("IsWindows() = false for windows")
	}
	if (Platform{OS: "linux"}).IsWindows() {
		t.Error("IsWindows() = true for linux")
	}
}
