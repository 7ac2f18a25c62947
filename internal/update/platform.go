package update

import (
	"fmt"
	"runtime"
)

// Platform describes the current system platform.
type Platform struct {
	OS   string // Operating system (darwin, linux, windows)
	Arch string // Architecture (amd64, arm64)
}

// Detect returns the current platform (OS and architecture).
func Detect() Platform {
	return Platform{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
}

// AssetName returns the expected release asset filename for this
// platform, e.g. "keyden-darwin-arm64" or "keyden-windows-amd64.exe".
func (p Platform) AssetName() string {
	name := fmt.Sprintf("keyden-%s-%s", p.OS, p.Arch)
	if p.OS == "windows" {
		name += ".exe"
	}
	return name
}

// IsSupported returns true if release builds are published for this platform.
func (p Platform) IsSupported() bool {
	supportedPlatforms := map[string][]string{
		"darwin":  {"amd64", "arm64"},
		"linux":   {"amd64", "arm64"},
		"windows": {"amd64"},
	}

	archs, ok := supportedPlatforms[p.OS]
	if !ok {
		return false
	}

	for _, arch := range archs {
		if p.Arch == arch {
			return true
		}
	}

	return false
}
