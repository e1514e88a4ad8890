package update

import (
	"runtime"
)

// Platform identifies the operating system and architecture
type Platform struct {
	OS   string
	Arch string
}

// Detect returns the current platform (OS and architecture)
func Detect() Platform {
	return Platform{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
}

// ShellOpenCommand returns the argv that hands path to the platform shell,
// which starts it the way a double-click would.
func (p Platform) ShellOpenCommand(path string) []string {
	switch p.OS {
	case "windows":
		return []string{"cmd", "/C", "start", "", path}
	case "darwin":
		return []string{"open", path}
	default:
		return []string{path}
	}
}

// IsWindows reports whether the platform is Windows
func (p Platform) IsWindows() bool {
	return p.OS == "windows"
}
