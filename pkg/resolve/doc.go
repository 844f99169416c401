// Package resolve classifies and ranks the downloadable artifacts attached to a
// software release for a given runtime platform and architecture.
//
// It is dependency-free and performs no I/O: it never downloads, verifies, or
// installs an artifact, and it never inspects archive contents. Everything it
// knows comes from artifact file names.
//
// Classification
//   - ClassifyPlatform and ClassifyArch map a file name to one tag each using
//     ordered, case-insensitive token rules; the first matching rule wins.
//   - Tokens must be bounded by the start/end of the name or a non-alphanumeric
//     separator, so "win" does not match inside "darwin".
//   - Names with no recognizable token classify as PlatformUnknown/ArchUnknown.
//
// Scoring
//   - Side-files (checksums, signatures, SBOMs) are removed before scoring and
//     never appear in the output.
//   - Each remaining artifact gets a platform term, an architecture term, and a
//     format preference. A rejected term forces the score to 0 but keeps the
//     candidate in the ranking (KeepRejected).
//   - Candidates scoring at least RecommendThreshold are recommended; ties keep
//     input order.
package resolve
