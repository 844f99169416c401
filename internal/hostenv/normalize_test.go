package hostenv

import (
	"testing"

	"github.com/3leaps/assetrank/pkg/resolve"
)

func TestNormalizePlatform(t *testing.T) {
	tests := []struct {
		in   string
		want resolve.Platform
	}{
		{"linux", resolve.PlatformLinux},
		{"Linux", resolve.PlatformLinux},
		{"Darwin", resolve.PlatformMacOS},
		{"macos", resolve.PlatformMacOS},
		{" osx ", resolve.PlatformMacOS},
		{"windows", resolve.PlatformWindows},
		{"Windows_NT", resolve.PlatformWindows},
		{"MINGW64_NT-10.0-19045", resolve.PlatformWindows},
		{"MSYS_NT-10.0", resolve.PlatformWindows},
		{"CYGWIN_NT-10.0", resolve.PlatformWindows},
		{"freebsd", resolve.PlatformUnknown},
		{"", resolve.PlatformUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizePlatform(tt.in); got != tt.want {
				t.Fatalf("NormalizePlatform(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeArch(t *testing.T) {
	tests := []struct {
		in   string
		want resolve.Arch
	}{
		{"x86_64", resolve.ArchX64},
		{"amd64", resolve.ArchX64},
		{"AMD64", resolve.ArchX64},
		{"x64", resolve.ArchX64},
		{"aarch64", resolve.ArchARM64},
		{"arm64", resolve.ArchARM64},
		{"ARM64", resolve.ArchARM64},
		{"386", resolve.ArchX86},
		{"i686", resolve.ArchX86},
		{"x86", resolve.ArchX86},
		{"universal", resolve.ArchUnknown},
		{"riscv64", resolve.ArchUnknown},
		{"armv7l", resolve.ArchUnknown},
		{"", resolve.ArchUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeArch(tt.in); got != tt.want {
				t.Fatalf("NormalizeArch(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDegradesWholeContext(t *testing.T) {
	rc, ok := Normalize(Report{OS: "Linux", Arch: "x86_64"})
	if !ok || rc != (resolve.RuntimeContext{Platform: resolve.PlatformLinux, Arch: resolve.ArchX64}) {
		t.Fatalf("Normalize = %+v, %v", rc, ok)
	}

	rc, ok = Normalize(Report{OS: "Linux", Arch: "riscv64"})
	if ok || rc != resolve.UnknownContext {
		t.Fatalf("Normalize with unknown arch = %+v, %v; want unknown context", rc, ok)
	}

	rc, ok = Normalize(Report{OS: "plan9", Arch: "amd64"})
	if ok || rc != resolve.UnknownContext {
		t.Fatalf("Normalize with unknown os = %+v, %v; want unknown context", rc, ok)
	}
}
