package tools

import "runtime"

// Platform is one of the host targets that precompiled releases exist for.
type Platform int

const (
	LinuxX86_64 Platform = iota + 1
	DarwinX86_64
	WindowsX86_64
)

var platformTokens = map[Platform]string{
	LinuxX86_64:   "x86_64-linux",
	DarwinX86_64:  "x86_64-apple-darwin",
	WindowsX86_64: "x86_64-windows",
}

// Token returns the default release asset token for the platform.
func (p Platform) Token() string {
	return platformTokens[p]
}

func (p Platform) String() string {
	if tok, ok := platformTokens[p]; ok {
		return tok
	}
	return "unsupported"
}

// Identify maps a GOOS/GOARCH pair to a supported Platform. Unsupported pairs
// report false.
func Identify(goos, goarch string) (Platform, bool) {
	if goarch != "amd64" {
		return 0, false
	}
	switch goos {
	case "linux":
		return LinuxX86_64, true
	case "darwin":
		return DarwinX86_64, true
	case "windows":
		return WindowsX86_64, true
	default:
		return 0, false
	}
}

// CurrentPlatform identifies the running host.
func CurrentPlatform() (Platform, bool) {
	return Identify(runtime.GOOS, runtime.GOARCH)
}
