package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/3leaps/assetrank/internal/cli"
	"github.com/3leaps/assetrank/internal/hostenv"
	"github.com/3leaps/assetrank/pkg/resolve"
)

// isolate keeps user config and ASSETRANK_* variables out of a test and pins
// the host query.
func isolate(t *testing.T, hostOS, hostArch string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{"API_BASE", "FORMAT", "TIMEOUT", "HOST_TIMEOUT", "PRERELEASE", "PLATFORM", "ARCH"} {
		t.Setenv("ASSETRANK_"+key, "")
		os.Unsetenv("ASSETRANK_" + key)
	}

	prevQuery, prevStdin := hostQuery, stdin
	hostQuery = func() hostenv.Query { return hostenv.Static(hostOS, hostArch) }
	t.Cleanup(func() {
		hostQuery, stdin = prevQuery, prevStdin
	})
}

func runCLI(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = cli.Run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func manifestPath(name string) string {
	return filepath.Join("testdata", "manifests", name)
}

func TestVersion(t *testing.T) {
	isolate(t, "linux", "amd64")
	code, out, _ := runCLI("--version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "assetrank dev\n", out)
}

func TestHelpExtended(t *testing.T) {
	isolate(t, "linux", "amd64")
	code, out, _ := runCLI("--helpextended")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Quickstart")
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no source", nil, "exactly one of --repo or --manifest"},
		{"both sources", []string{"--repo", "a/b", "--manifest", "m.json"}, "exactly one of --repo or --manifest"},
		{"tag and latest", []string{"--repo", "a/b", "--tag", "v1", "--latest"}, "mutually exclusive"},
		{"tag with manifest", []string{"--manifest", "m.json", "--tag", "v1"}, "apply only to --repo"},
		{"tag and prerelease", []string{"--repo", "a/b", "--tag", "v1", "--prerelease"}, "no effect with --tag"},
		{"stray argument", []string{"--manifest", "m.json", "extra"}, "unexpected arguments"},
		{"bad format", []string{"--manifest", manifestPath("tool.json"), "--format", "xml"}, "format: unsupported"},
		{"bad os", []string{"--manifest", manifestPath("tool.json"), "--os", "plan9"}, "platform: unrecognized"},
		{"unknown flag", []string{"--nope"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t, "linux", "amd64")
			code, out, errOut := runCLI(tt.args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, out)
			assert.Contains(t, errOut, tt.want)
		})
	}
}

func TestBestFromManifest(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		os, arch string
		wantCode int
		wantURL  string
	}{
		{"linux x64", "tool.json", "linux", "amd64", 0, "https://dl.example.test/v1.4.0/tool_1.4.0_linux_x86_64.tar.gz"},
		{"linux arm64", "tool.json", "linux", "aarch64", 0, "https://dl.example.test/v1.4.0/tool_1.4.0_linux_arm64.tar.gz"},
		{"windows x64", "tool.json", "windows", "x86_64", 0, "https://dl.example.test/v1.4.0/tool_1.4.0_windows_amd64.zip"},
		{"apple silicon only intel build", "tool.json", "darwin", "arm64", 2, ""},
		{"apple silicon universal", "universal.json", "macos", "arm64", 0, "https://dl.example.test/editor-2024.3-macos-universal.dmg"},
		{"unknown runtime", "tool.json", "unknown", "unknown", 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t, "linux", "amd64")
			code, out, errOut := runCLI("--manifest", manifestPath(tt.manifest), "--os", tt.os, "--arch", tt.arch, "--best")
			require.Equal(t, tt.wantCode, code, errOut)
			if tt.wantCode == 0 {
				assert.Equal(t, tt.wantURL+"\n", out)
			} else {
				assert.Empty(t, out)
				assert.Contains(t, errOut, "no recommended artifact")
			}
			if tt.os == "unknown" {
				assert.Contains(t, errOut, "runtime unknown")
				assert.Contains(t, errOut, "--os "+runtime.GOOS+" --arch "+runtime.GOARCH)
			}
		})
	}
}

func TestHostQueryUsedWithoutOverride(t *testing.T) {
	isolate(t, "windows", "AMD64")
	code, out, _ := runCLI("--manifest", manifestPath("tool.json"), "--best")
	require.Equal(t, 0, code)
	assert.Equal(t, "https://dl.example.test/v1.4.0/tool_1.4.0_windows_amd64.zip\n", out)

	// --arch alone keeps the host OS
	code, out, _ = runCLI("--manifest", manifestPath("tool.json"), "--arch", "arm64", "--best")
	assert.Equal(t, 2, code)
	assert.Empty(t, out)
}

func TestHostQueryFailureDegradesToUnknown(t *testing.T) {
	isolate(t, "linux", "amd64")
	hostQuery = func() hostenv.Query {
		return hostenv.QueryFunc(func(context.Context) (hostenv.Report, error) {
			return hostenv.Report{}, hostenv.ErrUnsupported
		})
	}
	code, out, errOut := runCLI("--manifest", manifestPath("tool.json"), "--format", "json")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, errOut, "host query failed")

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, resolve.UnknownContext, rep.Runtime)
	assert.Nil(t, rep.Recommended)
}

func TestJSONReport(t *testing.T) {
	isolate(t, "linux", "amd64")
	code, out, errOut := runCLI("--manifest", manifestPath("tool.json"), "--format", "json", "--show-excluded")
	require.Equal(t, 0, code, errOut)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "v1.4.0", rep.Release)
	assert.Equal(t, resolve.RuntimeContext{Platform: resolve.PlatformLinux, Arch: resolve.ArchX64}, rep.Runtime)
	require.Len(t, rep.Candidates, 4)
	assert.Equal(t, "tool_1.4.0_linux_x86_64.tar.gz", rep.Candidates[0].Artifact.Name)
	assert.Equal(t, 160, rep.Candidates[0].Score)
	assert.True(t, rep.Candidates[0].Recommended)
	for _, c := range rep.Candidates[1:] {
		assert.Equal(t, 0, c.Score, c.Artifact.Name)
	}
	require.NotNil(t, rep.Recommended)
	assert.Equal(t, "1", rep.Recommended.ID)

	require.Len(t, rep.Excluded, 3)
	assert.Equal(t, "tool_1.4.0_linux_x86_64.tar.gz.sha256", rep.Excluded[0].Name)
	assert.Equal(t, "sha256", rep.Excluded[0].Detail)
	assert.Equal(t, "tool_1.4.0_linux_x86_64.tar.gz", rep.Excluded[0].Target)
	assert.Equal(t, "minisign", rep.Excluded[1].Detail)
	assert.Equal(t, "checksums.txt", rep.Excluded[1].Covers)
	assert.EqualValues(t, "sbom", rep.Excluded[2].Kind)
}

func TestJSONReportKeys(t *testing.T) {
	isolate(t, "linux", "amd64")
	code, out, _ := runCLI("--manifest", manifestPath("tool.json"), "--format", "json")
	require.Equal(t, 0, code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	for _, key := range []string{"source", "release", "runtime", "candidates", "recommended"} {
		assert.Contains(t, raw, key)
	}
	assert.NotContains(t, raw, "excluded")
	first := raw["candidates"].([]any)[0].(map[string]any)
	assert.Equal(t, true, first["isRecommended"])
	assert.Equal(t, false, first["isFallback"])
}

func TestHideRejected(t *testing.T) {
	isolate(t, "linux", "amd64")
	code, out, _ := runCLI("--manifest", manifestPath("tool.json"), "--format", "json", "--hide-rejected")
	require.Equal(t, 0, code)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Candidates, 1)
	assert.Equal(t, "tool_1.4.0_linux_x86_64.tar.gz", rep.Candidates[0].Artifact.Name)
}

func TestYAMLReportFallback(t *testing.T) {
	isolate(t, "darwin", "arm64")
	code, out, errOut := runCLI("--manifest", manifestPath("mac-intel-only.json"), "--format", "yaml")
	require.Equal(t, 0, code, errOut)

	var rep report
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	assert.Equal(t, resolve.PlatformMacOS, rep.Runtime.Platform)
	require.NotEmpty(t, rep.Candidates)
	top := rep.Candidates[0]
	assert.Equal(t, "Viewer-0.9.2-macos-x64.dmg", top.Artifact.Name)
	assert.Equal(t, 87, top.Score)
	assert.True(t, top.Fallback)
	assert.False(t, top.Recommended)
	assert.Nil(t, rep.Recommended)
}

func TestTableOutput(t *testing.T) {
	isolate(t, "darwin", "arm64")
	code, out, _ := runCLI("--manifest", manifestPath("mac-intel-only.json"))
	require.Equal(t, 0, code)

	assert.Contains(t, out, "manifest:"+manifestPath("mac-intel-only.json")+" v0.9.2")
	assert.Contains(t, out, "(runtime: macOS ARM64)")
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "fallback")
	assert.Contains(t, out, "88 MB")
	assert.Contains(t, out, "No recommendation for macOS ARM64")
	lines := strings.Split(out, "\n")
	var first string
	for i, line := range lines {
		if strings.HasPrefix(line, "RANK") {
			first = lines[i+1]
			break
		}
	}
	assert.True(t, strings.HasPrefix(first, "1 "), first)
	assert.Contains(t, first, "Viewer-0.9.2-macos-x64.dmg")
}

func TestManifestFromStdin(t *testing.T) {
	isolate(t, "linux", "arm64")
	data, err := os.ReadFile(manifestPath("universal.json"))
	require.NoError(t, err)
	stdin = bytes.NewReader(data)

	code, out, errOut := runCLI("--manifest", "-", "--best")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "https://dl.example.test/editor-2024.3-linux-aarch64.tar.xz\n", out)
}

func TestInvalidManifest(t *testing.T) {
	isolate(t, "linux", "amd64")
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"artifacts":[{"name":"x"}]}`), 0o600))

	code, _, errOut := runCLI("--manifest", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid artifact manifest")
}
