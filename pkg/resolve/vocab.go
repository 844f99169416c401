package resolve

// Platform is the operating-system family encoded in an artifact name or
// reported by the host.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformUnknown Platform = "unknown"
)

// Arch is the CPU instruction set encoded in an artifact name or reported by
// the host.
type Arch string

const (
	ArchX64       Arch = "x64"
	ArchARM64     Arch = "arm64"
	ArchX86       Arch = "x86"
	ArchUniversal Arch = "universal" // built for several architectures (fat binary)
	ArchUnknown   Arch = "unknown"
)

// RuntimeContext is the platform/architecture pair of the machine doing the
// resolution.
type RuntimeContext struct {
	Platform Platform `json:"platform" yaml:"platform"`
	Arch     Arch     `json:"arch" yaml:"arch"`
}

// UnknownContext is the safe-degrade runtime context. No candidate can be
// recommended for it.
var UnknownContext = RuntimeContext{Platform: PlatformUnknown, Arch: ArchUnknown}

// IsUnknown reports whether neither the platform nor the architecture is known.
func (rc RuntimeContext) IsUnknown() bool {
	return rc.Platform == PlatformUnknown && rc.Arch == ArchUnknown
}

func (rc RuntimeContext) String() string {
	p, a := PlatformLabel(rc.Platform), ArchLabel(rc.Arch)
	switch {
	case p == "" && a == "":
		return "unknown"
	case p == "":
		return "unknown " + a
	case a == "":
		return p
	}
	return p + " " + a
}

// Artifact is a downloadable file attached to a release. It is never mutated
// by this package.
type Artifact struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	SizeBytes     int64  `json:"sizeBytes" yaml:"sizeBytes"`
	DownloadURL   string `json:"downloadUrl" yaml:"downloadUrl"`
	ContentType   string `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	DownloadCount *int64 `json:"downloadCount,omitempty" yaml:"downloadCount,omitempty"`
}

// Candidate is an artifact annotated with its classification and score.
type Candidate struct {
	Artifact    Artifact `json:"artifact" yaml:"artifact"`
	Platform    Platform `json:"platform" yaml:"platform"`
	Arch        Arch     `json:"arch" yaml:"arch"`
	Score       int      `json:"score" yaml:"score"`
	Recommended bool     `json:"isRecommended" yaml:"isRecommended"`
	Fallback    bool     `json:"isFallback" yaml:"isFallback"`
}

// PlatformLabel returns the display name for p, or "" for PlatformUnknown.
func PlatformLabel(p Platform) string {
	switch p {
	case PlatformWindows:
		return "Windows"
	case PlatformMacOS:
		return "macOS"
	case PlatformLinux:
		return "Linux"
	default:
		return ""
	}
}

// ArchLabel returns the display name for a, or "" for ArchUnknown.
func ArchLabel(a Arch) string {
	switch a {
	case ArchX64:
		return "x64"
	case ArchARM64:
		return "ARM64"
	case ArchX86:
		return "x86"
	case ArchUniversal:
		return "Universal"
	default:
		return ""
	}
}
