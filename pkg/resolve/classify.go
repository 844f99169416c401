package resolve

import (
	"regexp"
	"strings"
)

type platformRule struct {
	tag Platform
	re  *regexp.Regexp
}

type archRule struct {
	tag Arch
	re  *regexp.Regexp
}

// tokenRegex matches any of the alternatives as a whole token: the match must be
// bounded by the ends of the name or by a non-alphanumeric separator.
// Names are lowercased before matching.
func tokenRegex(alternatives string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^a-z0-9])(?:` + alternatives + `)(?:[^a-z0-9]|$)`)
}

// Order matters: first match wins.
var platformRules = []platformRule{
	{PlatformWindows, tokenRegex(`(?:windows|win)(?:32|64)?`)},
	{PlatformMacOS, tokenRegex(`darwin|macos|osx|apple`)},
	{PlatformLinux, tokenRegex(`linux(?:32|64)?`)},
}

// arm64 is checked before x64 so aarch64/arm64 names never fall through to the
// broader x86 family tokens.
var archRules = []archRule{
	{ArchARM64, tokenRegex(`aarch64|arm64`)},
	{ArchX64, tokenRegex(`x86_64|x64|amd64`)},
	{ArchX86, tokenRegex(`i[3-6]86|x86_32|386`)},
	{ArchUniversal, tokenRegex(`universal|all`)},
}

// ClassifyPlatform returns the platform tag encoded in name.
func ClassifyPlatform(name string) Platform {
	lower := strings.ToLower(name)
	for _, rule := range platformRules {
		if rule.re.MatchString(lower) {
			return rule.tag
		}
	}
	return PlatformUnknown
}

// ClassifyArch returns the architecture tag encoded in name. It does not look
// at the platform.
func ClassifyArch(name string) Arch {
	lower := strings.ToLower(name)
	for _, rule := range archRules {
		if rule.re.MatchString(lower) {
			return rule.tag
		}
	}
	return ArchUnknown
}

// Classify returns both tags for name.
func Classify(name string) (Platform, Arch) {
	return ClassifyPlatform(name), ClassifyArch(name)
}
