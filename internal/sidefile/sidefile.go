// Package sidefile describes the checksum, signature, and SBOM files that
// resolve excludes from ranking. It only looks at names; nothing is downloaded
// or verified.
package sidefile

import (
	"strings"

	"github.com/3leaps/assetrank/pkg/resolve"
)

type Kind string

const (
	KindChecksum  Kind = "checksum"
	KindSignature Kind = "signature"
	KindSBOM      Kind = "sbom"
	KindNone      Kind = "none"
)

const (
	FormatMinisign = "minisign"
	FormatPGP      = "pgp"
	FormatBinary   = "sig"
)

// Info describes one side-file.
type Info struct {
	Name   string `json:"name" yaml:"name"`
	Kind   Kind   `json:"kind" yaml:"kind"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"` // checksum algorithm or signature format
	Target string `json:"target,omitempty" yaml:"target,omitempty"` // artifact a per-asset side-file belongs to
	// Covers is the checksum list a consolidated signature signs, and
	// Algorithm that list's digest algorithm when its name gives one.
	Covers    string `json:"covers,omitempty" yaml:"covers,omitempty"`
	Algorithm string `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
}

var checksumSuffixes = map[string]string{
	".sha256": "sha256",
	".sha512": "sha512",
	".sha1":   "sha1",
	".md5":    "md5",
}

var signatureSuffixes = map[string]string{
	".minisig": FormatMinisign,
	".asc":     FormatPGP,
	".gpg":     FormatPGP,
	".sig":     FormatBinary,
}

// Describe classifies name. Names resolve would not exclude are KindNone.
func Describe(name string) Info {
	info := Info{Name: name, Kind: KindNone}
	if !resolve.IsSideFile(name) {
		return info
	}
	lower := strings.ToLower(name)
	suffix := lower[strings.LastIndex(lower, "."):]

	switch {
	case checksumSuffixes[suffix] != "":
		info.Kind = KindChecksum
		info.Detail = checksumSuffixes[suffix]
	case signatureSuffixes[suffix] != "":
		info.Kind = KindSignature
		info.Detail = signatureSuffixes[suffix]
	case suffix == ".sbom":
		info.Kind = KindSBOM
	}
	info.Target = target(name, suffix)
	if info.Kind == KindSignature && info.Target == "" {
		if base := name[:len(name)-len(suffix)]; IsConsolidated(base) {
			info.Covers = base
			info.Algorithm = listAlgorithm(base)
		}
	}
	return info
}

// DescribeAll describes each artifact in order.
func DescribeAll(artifacts []resolve.Artifact) []Info {
	out := make([]Info, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, Describe(a.Name))
	}
	return out
}

// target strips the side-file suffix when what remains still looks like an
// artifact name (has its own extension), e.g. "app.tar.gz.sha256". Consolidated
// files such as "SHA256SUMS.minisig" have no target.
func target(name, suffix string) string {
	base := name[:len(name)-len(suffix)]
	if !strings.Contains(base, ".") || IsConsolidated(base) {
		return ""
	}
	return base
}

// IsConsolidated reports whether name is a checksum list covering many
// artifacts rather than a per-asset sidecar.
func IsConsolidated(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "sums") || strings.Contains(lower, "checksums")
}

var listAlgorithms = []struct {
	marker string
	algo   string
}{
	{"sha2-512sums", "sha512"},
	{"sha512sums", "sha512"},
	{"sha2-256sums", "sha256"},
	{"sha256sums", "sha256"},
	{"sha1sums", "sha1"},
	{"md5sums", "md5"},
}

// listAlgorithm returns the digest algorithm named by a consolidated checksum
// list such as "SHA2-512SUMS.txt", or "" when the name does not say.
func listAlgorithm(name string) string {
	lower := strings.ToLower(name)
	for _, l := range listAlgorithms {
		if strings.Contains(lower, l.marker) {
			return l.algo
		}
	}
	return ""
}
