//go:build linux

package hostenv

import (
	"context"
	"testing"

	"github.com/3leaps/assetrank/pkg/resolve"
)

func TestHostQueryLinux(t *testing.T) {
	r, err := Host().Query(context.Background())
	if err != nil {
		t.Fatalf("Host().Query: %v", err)
	}
	if r.OS != "Linux" {
		t.Fatalf("OS = %q, want Linux", r.OS)
	}
	if r.Arch == "" {
		t.Fatal("Arch is empty")
	}
}

func TestHostQueryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Host().Query(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestCompiledMatchesRuntime(t *testing.T) {
	r, err := Compiled().Query(context.Background())
	if err != nil {
		t.Fatalf("Compiled().Query: %v", err)
	}
	if r.OS != "linux" {
		t.Fatalf("OS = %q, want linux", r.OS)
	}
	if got := NormalizePlatform(r.OS); got != resolve.PlatformLinux {
		t.Fatalf("NormalizePlatform(%q) = %q", r.OS, got)
	}
}
