package update

import (
	"runtime"
	"testing"
)

func TestDetect(t *testing.T) {
	p := Detect()
	if p.OS != runtime.GOOS {
		t.Errorf("OS = %s, want %s", p.OS, runtime.GOOS)
	}
	if p.Arch != runtime.GOARCH {
		t.Errorf("Arch = %s, want %s", p.Arch, runtime.GOARCH)
	}
}

func TestAssetName(t *testing.T) {
	tests := []struct {
		platform Platform
		want     string
	}{
		{Platform{OS: "darwin", Arch: "arm64"}, "keyden-darwin-arm64"},
		{Platform{OS: "linux", Arch: "amd64"}, "keyden-linux-amd64"},
		{Platform{OS: "windows", Arch: "amd64"}, "keyden-windows-amd64.exe"},
	}

	for _, tt := range tests {
		if got := tt.platform.AssetName(); got != tt.want {
			t.Errorf("AssetName() = %s, want %s", got, tt.want)
		}
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		platform Platform
		want     bool
	}{
		{Platform{OS: "darwin", Arch: "amd64"}, true},
		{Platform{OS: "darwin", Arch: "arm64"}, true},
		{Platform{OS: "linux", Arch: "amd64"}, true},
		{Platform{OS: "linux", Arch: "arm64"}, true},
		{Platform{OS: "windows", Arch: "amd64"}, true},
		{Platform{OS: "windows", Arch: "arm64"}, false},
		{Platform{OS: "plan9", Arch: "amd64"}, false},
		{Platform{OS: "linux", Arch: "386"}, false},
	}

	for _, tt := range tests {
		if got := tt.platform.IsSupported(); got != tt.want {
			t.Errorf("IsSupported(%s/%s) = %v, want %v", tt.platform.OS, tt.platform.Arch, got, tt.want)
		}
	}
}
