package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"

	gh "github.com/3leaps/assetrank/internal/host/github"
	"github.com/3leaps/assetrank/internal/model"
	"github.com/3leaps/assetrank/pkg/resolve"
)

// ReleaseAPI is the part of the GitHub client the supplier needs.
type ReleaseAPI interface {
	ReleaseByTag(ctx context.Context, repo, tag string) (*model.Release, error)
	LatestRelease(ctx context.Context, repo string) (*model.Release, error)
	ListReleases(ctx context.Context, repo string, perPage int) ([]model.Release, error)
}

// GitHub supplies the assets of a GitHub release. With no Tag it uses the
// latest release; Prerelease widens "latest" to prereleases.
type GitHub struct {
	API        ReleaseAPI
	Repo       string
	Tag        string
	Prerelease bool
}

func (g *GitHub) Fetch(ctx context.Context) (*Listing, error) {
	if err := ValidateRepo(g.Repo); err != nil {
		return nil, err
	}

	rel, err := g.release(ctx)
	if err != nil {
		var statusErr *gh.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s %s", ErrNoRelease, g.Repo, g.describeRef())
		}
		return nil, fmt.Errorf("fetching release: %w", err)
	}

	return &Listing{
		Source:    "github:" + g.Repo,
		Release:   rel.TagName,
		Title:     rel.DisplayName(),
		Artifacts: ArtifactsFromRelease(rel),
	}, nil
}

func (g *GitHub) release(ctx context.Context) (*model.Release, error) {
	switch {
	case g.Tag != "":
		return g.API.ReleaseByTag(ctx, g.Repo, g.Tag)
	case g.Prerelease:
		rels, err := g.API.ListReleases(ctx, g.Repo, 50)
		if err != nil {
			return nil, err
		}
		rel := PickNewest(rels)
		if rel == nil {
			return nil, fmt.Errorf("%w: %s has no published releases", ErrNoRelease, g.Repo)
		}
		return rel, nil
	default:
		return g.API.LatestRelease(ctx, g.Repo)
	}
}

func (g *GitHub) describeRef() string {
	switch {
	case g.Tag != "":
		return "tag " + g.Tag
	case g.Prerelease:
		return "(latest including prereleases)"
	default:
		return "(latest)"
	}
}

// PickNewest returns the non-draft release with the greatest semver tag.
// Releases whose tags are not semver only win when no tag is; among those the
// API order (newest first) is kept.
func PickNewest(rels []model.Release) *model.Release {
	var best *model.Release
	bestVersion := ""
	for i := range rels {
		r := &rels[i]
		if r.Draft {
			continue
		}
		v := canonicalTag(r.TagName)
		switch {
		case best == nil:
			best, bestVersion = r, v
		case v != "" && (bestVersion == "" || semver.Compare(v, bestVersion) > 0):
			best, bestVersion = r, v
		}
	}
	return best
}

// canonicalTag returns the tag as a valid semver string with a "v" prefix, or
// "" when it is not semver.
func canonicalTag(tag string) string {
	t := strings.TrimSpace(tag)
	if !strings.HasPrefix(t, "v") {
		t = "v" + t
	}
	if !semver.IsValid(t) {
		return ""
	}
	return t
}

// ArtifactsFromRelease converts release assets to artifacts in API order.
func ArtifactsFromRelease(rel *model.Release) []resolve.Artifact {
	out := make([]resolve.Artifact, 0, len(rel.Assets))
	for _, a := range rel.Assets {
		out = append(out, resolve.Artifact{
			ID:            strconv.FormatInt(a.ID, 10),
			Name:          a.Name,
			SizeBytes:     a.Size,
			DownloadURL:   a.BrowserDownloadUrl,
			ContentType:   a.ContentType,
			DownloadCount: a.DownloadCount,
		})
	}
	return out
}
