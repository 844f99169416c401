package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/3leaps/assetrank/internal/model"
)

const (
	DefaultAPIBase = "https://api.github.com"

	maxErrorBody = 512
)

func TokenFromEnv() string {
	if tok := strings.TrimSpace(os.Getenv("ASSETRANK_GITHUB_TOKEN")); tok != "" {
		return tok
	}
	return strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
}

func UserAgent(version string) string {
	return fmt.Sprintf("assetrank/%s", version)
}

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// Client reads release metadata from the GitHub REST API.
type Client struct {
	APIBase   string
	UserAgent string
	Token     string
	HTTP      *http.Client
}

// NewClient returns a client for apiBase (DefaultAPIBase when empty) using the
// token from the environment.
func NewClient(apiBase, userAgent string, timeout time.Duration) *Client {
	base := strings.TrimRight(strings.TrimSpace(apiBase), "/")
	if base == "" {
		base = DefaultAPIBase
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		APIBase:   base,
		UserAgent: userAgent,
		Token:     TokenFromEnv(),
		HTTP:      &http.Client{Timeout: timeout},
	}
}

// ReleaseByTag fetches the release published for tag.
func (c *Client) ReleaseByTag(ctx context.Context, repo, tag string) (*model.Release, error) {
	var rel model.Release
	if err := c.getJSON(ctx, c.repoURL(repo, "releases/tags/"+url.PathEscape(tag)), &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

// LatestRelease fetches the most recent non-prerelease, non-draft release.
func (c *Client) LatestRelease(ctx context.Context, repo string) (*model.Release, error) {
	var rel model.Release
	if err := c.getJSON(ctx, c.repoURL(repo, "releases/latest"), &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

// ListReleases fetches the first page of releases, newest first.
func (c *Client) ListReleases(ctx context.Context, repo string, perPage int) ([]model.Release, error) {
	if perPage <= 0 || perPage > 100 {
		perPage = 30
	}
	var rels []model.Release
	if err := c.getJSON(ctx, c.repoURL(repo, fmt.Sprintf("releases?per_page=%d", perPage)), &rels); err != nil {
		return nil, err
	}
	return rels, nil
}

func (c *Client) repoURL(repo, suffix string) string {
	return fmt.Sprintf("%s/repos/%s/%s", c.APIBase, repo, suffix)
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{URL: url, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse %s: %w", url, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.Token != "" && strings.Contains(url, "github.com") {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return httpClient.Do(req)
}
