package hostenv

import (
	"strings"

	"github.com/3leaps/assetrank/pkg/resolve"
)

var platformAliasTable = map[resolve.Platform][]string{
	resolve.PlatformWindows: {"windows", "win", "win32", "win64", "windows_nt"},
	resolve.PlatformMacOS:   {"darwin", "macos", "macosx", "osx", "mac"},
	resolve.PlatformLinux:   {"linux"},
}

// Unix-like shells on Windows report their own uname prefix.
var windowsShellPrefixes = []string{"mingw", "msys", "cygwin"}

var archAliasTable = map[resolve.Arch][]string{
	resolve.ArchX64:   {"x86_64", "amd64", "x64", "x86-64"},
	resolve.ArchARM64: {"aarch64", "arm64"},
	resolve.ArchX86:   {"386", "x86", "i386", "i486", "i586", "i686"},
}

var (
	platformLookup = invert(platformAliasTable)
	archLookup     = invert(archAliasTable)
)

func invert[T ~string](table map[T][]string) map[string]T {
	out := make(map[string]T)
	for tag, aliases := range table {
		for _, alias := range aliases {
			out[alias] = tag
		}
	}
	return out
}

// NormalizePlatform maps a host OS string to a platform tag.
func NormalizePlatform(value string) resolve.Platform {
	v := strings.ToLower(strings.TrimSpace(value))
	if tag, ok := platformLookup[v]; ok {
		return tag
	}
	for _, prefix := range windowsShellPrefixes {
		if strings.HasPrefix(v, prefix) {
			return resolve.PlatformWindows
		}
	}
	return resolve.PlatformUnknown
}

// NormalizeArch maps a host architecture string to an architecture tag.
// Hosts never report "universal".
func NormalizeArch(value string) resolve.Arch {
	v := strings.ToLower(strings.TrimSpace(value))
	if tag, ok := archLookup[v]; ok {
		return tag
	}
	return resolve.ArchUnknown
}

// Normalize maps a report to a runtime context. If either field is not
// recognized the whole context is unknown and ok is false.
func Normalize(r Report) (rc resolve.RuntimeContext, ok bool) {
	platform := NormalizePlatform(r.OS)
	arch := NormalizeArch(r.Arch)
	if platform == resolve.PlatformUnknown || arch == resolve.ArchUnknown {
		return resolve.UnknownContext, false
	}
	return resolve.RuntimeContext{Platform: platform, Arch: arch}, true
}
