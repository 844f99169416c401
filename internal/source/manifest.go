package source

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/3leaps/assetrank/internal/schema"
	"github.com/3leaps/assetrank/pkg/resolve"
)

//go:embed schemas/manifest.schema.json
var manifestSchemaJSON []byte

var manifestSchema = schema.MustCompile("https://assetrank.3leaps.dev/schemas/manifest.schema.json", manifestSchemaJSON)

type manifestFile struct {
	Release   string             `json:"release"`
	Artifacts []manifestArtifact `json:"artifacts"`
}

type manifestArtifact struct {
	ID            any     `json:"id"`
	Name          string  `json:"name"`
	SizeBytes     int64   `json:"sizeBytes"`
	DownloadURL   string  `json:"downloadUrl"`
	ContentType   *string `json:"contentType"`
	DownloadCount *int64  `json:"downloadCount"`
}

// Manifest supplies artifacts from a JSON manifest file. Path "-" reads Stdin.
type Manifest struct {
	Path  string
	Stdin io.Reader
}

func (m *Manifest) Fetch(ctx context.Context) (*Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := m.read()
	if err != nil {
		return nil, err
	}
	listing, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Path, err)
	}
	listing.Source = "manifest:" + m.Path
	return listing, nil
}

func (m *Manifest) read() ([]byte, error) {
	if m.Path == "-" {
		if m.Stdin == nil {
			return nil, fmt.Errorf("read manifest: no stdin")
		}
		data, err := io.ReadAll(m.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read manifest from stdin: %w", err)
		}
		return data, nil
	}
	// #nosec G304 -- manifest path comes from --manifest
	data, err := os.ReadFile(m.Path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return data, nil
}

// ParseManifest validates and decodes a manifest document. Artifacts without
// an id get a stable name-based UUID derived from their download URL (or name).
func ParseManifest(data []byte) (*Listing, error) {
	if err := manifestSchema.ValidateJSON(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	var mf manifestFile
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&mf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	out := &Listing{Release: mf.Release, Artifacts: make([]resolve.Artifact, 0, len(mf.Artifacts))}
	for _, a := range mf.Artifacts {
		art := resolve.Artifact{
			ID:            idString(a.ID),
			Name:          a.Name,
			SizeBytes:     a.SizeBytes,
			DownloadURL:   a.DownloadURL,
			DownloadCount: a.DownloadCount,
		}
		if a.ContentType != nil {
			art.ContentType = *a.ContentType
		}
		if art.ID == "" {
			art.ID = stableID(a.DownloadURL, a.Name)
		}
		out.Artifacts = append(out.Artifacts, art)
	}
	return out, nil
}

func idString(v any) string {
	switch id := v.(type) {
	case json.Number:
		return id.String()
	case string:
		return id
	default:
		return ""
	}
}

func stableID(downloadURL, name string) string {
	key := downloadURL
	if key == "" {
		key = name
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}
