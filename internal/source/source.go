// Package source supplies the raw artifact lists that resolve ranks: from a
// GitHub release lookup or from a JSON manifest.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/3leaps/assetrank/pkg/resolve"
)

var (
	ErrNoRelease       = errors.New("no release found")
	ErrInvalidManifest = errors.New("invalid artifact manifest")
	ErrInvalidRepo     = errors.New("repo must be in owner/repo form")
)

// Listing is the artifact list of one release.
type Listing struct {
	Source    string             `json:"source" yaml:"source"`
	Release   string             `json:"release,omitempty" yaml:"release,omitempty"`
	Title     string             `json:"title,omitempty" yaml:"title,omitempty"`
	Artifacts []resolve.Artifact `json:"artifacts" yaml:"artifacts"`
}

// Supplier produces artifact listings.
type Supplier interface {
	Fetch(ctx context.Context) (*Listing, error)
}

// ValidateRepo checks the owner/repo form.
func ValidateRepo(repo string) error {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return fmt.Errorf("%w: %q", ErrInvalidRepo, repo)
	}
	return nil
}
