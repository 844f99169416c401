package resolve

import (
	"sort"
	"strings"
)

// RecommendThreshold is the minimum score a candidate needs to be recommended.
// An exact platform and architecture match (100+50) always clears it.
const RecommendThreshold = 140

// Platform term points.
const (
	platformExactPoints    = 100
	platformUnknownPoints  = 10
	platformEmulatedPoints = 50
)

// Architecture term points.
const (
	archExactPoints     = 50
	archUniversalPoints = 40
	archUnknownPoints   = 5
	archEmulatedPoints  = 30
)

// SideFileSuffixes lists the name suffixes of non-installable side-files.
var SideFileSuffixes = []string{
	".sha256", ".sha512", ".sha1", ".md5",
	".sig", ".asc", ".gpg", ".minisig",
	".sbom",
}

// formatPreferences break ties between packagings of the same build.
// Checked in order; the first matching suffix wins.
var formatPreferences = []struct {
	suffixes []string
	points   int
}{
	{[]string{".tar.gz", ".tgz"}, 10},
	{[]string{".tar.xz", ".txz"}, 9},
	{[]string{".zip"}, 8},
	{[]string{".exe", ".msi"}, 7},
	{[]string{".dmg", ".pkg"}, 7},
}

// Outcome is the result of evaluating one scoring term.
type Outcome string

const (
	OutcomeExact      Outcome = "exact"
	OutcomeDiscounted Outcome = "discounted"
	OutcomeEmulated   Outcome = "emulated" // runs through hardware emulation
	OutcomeRejected   Outcome = "rejected"
	OutcomeSkipped    Outcome = "skipped" // not evaluated because an earlier term rejected
)

// Term is the outcome and points contributed by one scoring term.
type Term struct {
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	Points  int     `json:"points" yaml:"points"`
}

// Score is the full breakdown behind a candidate's score.
type Score struct {
	Value    int  `json:"value" yaml:"value"`
	Fallback bool `json:"fallback" yaml:"fallback"`
	Platform Term `json:"platform" yaml:"platform"`
	Arch     Term `json:"arch" yaml:"arch"`
	Format   int  `json:"format" yaml:"format"`
}

// Recommended reports whether the score clears RecommendThreshold.
func (s Score) Recommended() bool {
	return s.Value >= RecommendThreshold
}

// RejectionPolicy controls what happens to candidates whose score was forced
// to 0 by a rejected term.
type RejectionPolicy int

const (
	// KeepRejected keeps rejected candidates in the ranking with score 0 so
	// callers can still show every artifact.
	KeepRejected RejectionPolicy = iota
	// DropRejected removes rejected candidates from the ranking.
	DropRejected
)

// Options tune Rank.
type Options struct {
	Rejected RejectionPolicy
}

// IsSideFile reports whether name is a checksum, signature, or manifest file.
func IsSideFile(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range SideFileSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// FilterInstallable returns the artifacts that are not side-files, in input
// order.
func FilterInstallable(artifacts []Artifact) []Artifact {
	installable, _ := PartitionInstallable(artifacts)
	return installable
}

// PartitionInstallable splits artifacts into installable artifacts and
// excluded side-files, both in input order.
func PartitionInstallable(artifacts []Artifact) (installable, excluded []Artifact) {
	installable = make([]Artifact, 0, len(artifacts))
	for _, a := range artifacts {
		if IsSideFile(a.Name) {
			excluded = append(excluded, a)
			continue
		}
		installable = append(installable, a)
	}
	return installable, excluded
}

// ScoreArtifact scores a single artifact name for rc.
func ScoreArtifact(name string, rc RuntimeContext) Score {
	platform, arch := Classify(name)
	return scoreClassified(name, platform, arch, rc)
}

func scoreClassified(name string, platform Platform, arch Arch, rc RuntimeContext) Score {
	emulated := isEmulated(platform, arch, rc)

	s := Score{Fallback: emulated}
	s.Platform = platformTerm(platform, rc, emulated)
	if s.Platform.Outcome == OutcomeRejected {
		s.Arch = Term{Outcome: OutcomeSkipped}
		return s
	}
	s.Arch = archTerm(arch, rc, emulated)
	if s.Arch.Outcome == OutcomeRejected {
		return s
	}

	s.Value = s.Platform.Points + s.Arch.Points
	if s.Value > 0 {
		s.Format = formatPoints(name)
		s.Value += s.Format
	}
	return s
}

// isEmulated reports the Apple Silicon case: an Intel macOS build on an arm64
// macOS host runs through Rosetta.
func isEmulated(platform Platform, arch Arch, rc RuntimeContext) bool {
	return platform == PlatformMacOS && rc.Platform == PlatformMacOS &&
		rc.Arch == ArchARM64 && arch == ArchX64
}

func platformTerm(platform Platform, rc RuntimeContext, emulated bool) Term {
	switch {
	case emulated:
		return Term{Outcome: OutcomeEmulated, Points: platformEmulatedPoints}
	case platform != PlatformUnknown && platform == rc.Platform:
		return Term{Outcome: OutcomeExact, Points: platformExactPoints}
	case platform == PlatformUnknown:
		return Term{Outcome: OutcomeDiscounted, Points: platformUnknownPoints}
	default:
		return Term{Outcome: OutcomeRejected}
	}
}

// The emulated pairing earns points in both terms: +50 platform, +30 arch.
func archTerm(arch Arch, rc RuntimeContext, emulated bool) Term {
	switch {
	case arch != ArchUnknown && arch == rc.Arch:
		return Term{Outcome: OutcomeExact, Points: archExactPoints}
	case arch == ArchUniversal:
		return Term{Outcome: OutcomeDiscounted, Points: archUniversalPoints}
	case arch == ArchUnknown:
		return Term{Outcome: OutcomeDiscounted, Points: archUnknownPoints}
	case emulated:
		return Term{Outcome: OutcomeEmulated, Points: archEmulatedPoints}
	default:
		return Term{Outcome: OutcomeRejected}
	}
}

func formatPoints(name string) int {
	lower := strings.ToLower(name)
	for _, pref := range formatPreferences {
		for _, suffix := range pref.suffixes {
			if strings.HasSuffix(lower, suffix) {
				return pref.points
			}
		}
	}
	return 0
}

// ParseAssets filters side-files, classifies and scores every remaining
// artifact, and returns the candidates sorted by descending score. Rejected
// candidates stay in the list with score 0. The result is never nil.
func ParseAssets(artifacts []Artifact, rc RuntimeContext) []Candidate {
	return Rank(artifacts, rc, Options{Rejected: KeepRejected})
}

// Rank is ParseAssets with a configurable rejection policy.
func Rank(artifacts []Artifact, rc RuntimeContext, opts Options) []Candidate {
	installable := FilterInstallable(artifacts)
	out := make([]Candidate, 0, len(installable))
	for _, a := range installable {
		platform, arch := Classify(a.Name)
		s := scoreClassified(a.Name, platform, arch, rc)
		if opts.Rejected == DropRejected && s.rejected() {
			continue
		}
		out = append(out, Candidate{
			Artifact:    a,
			Platform:    platform,
			Arch:        arch,
			Score:       s.Value,
			Recommended: s.Recommended(),
			Fallback:    s.Fallback,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func (s Score) rejected() bool {
	return s.Platform.Outcome == OutcomeRejected || s.Arch.Outcome == OutcomeRejected
}

// GetRecommendedAsset returns the highest-scoring recommended artifact, or nil
// when no candidate clears RecommendThreshold.
func GetRecommendedAsset(artifacts []Artifact, rc RuntimeContext) *Artifact {
	return Best(ParseAssets(artifacts, rc))
}

// Best returns the first recommended artifact of an already ranked list, or nil.
func Best(ranked []Candidate) *Artifact {
	for i := range ranked {
		if ranked[i].Recommended {
			a := ranked[i].Artifact
			return &a
		}
	}
	return nil
}
