package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFromEnvPrefersAssetrankToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "generic")
	t.Setenv("ASSETRANK_GITHUB_TOKEN", " specific ")
	assert.Equal(t, "specific", TokenFromEnv())

	t.Setenv("ASSETRANK_GITHUB_TOKEN", "")
	assert.Equal(t, "generic", TokenFromEnv())
}

func TestClientReleaseByTag(t *testing.T) {
	var gotUA, gotAccept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		if r.URL.Path != "/repos/acme/tool/releases/tags/v1.2.0" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"tag_name":"v1.2.0","assets":[
			{"id":11,"name":"tool-linux-x64.tar.gz","size":2048,"browser_download_url":"https://dl/tool-linux-x64.tar.gz","content_type":"application/gzip","download_count":42}
		]}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL+"/", UserAgent("test"), time.Second)
	rel, err := c.ReleaseByTag(context.Background(), "acme/tool", "v1.2.0")
	require.NoError(t, err)
	require.Len(t, rel.Assets, 1)

	a := rel.Assets[0]
	assert.Equal(t, int64(11), a.ID)
	assert.Equal(t, "application/gzip", a.ContentType)
	require.NotNil(t, a.DownloadCount)
	assert.Equal(t, int64(42), *a.DownloadCount)
	assert.Equal(t, "assetrank/test", gotUA)
	assert.Equal(t, "application/vnd.github+json", gotAccept)
}

func TestClientStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "", time.Second)
	_, err := c.LatestRelease(context.Background(), "acme/missing")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "Not Found")
}

func TestClientListReleasesClampsPerPage(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[{"tag_name":"v2.0.0"},{"tag_name":"v1.0.0"}]`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "", time.Second)
	rels, err := c.ListReleases(context.Background(), "acme/tool", 500)
	require.NoError(t, err)
	assert.Len(t, rels, 2)
	assert.Equal(t, "per_page=30", gotQuery)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", "", 0)
	assert.Equal(t, DefaultAPIBase, c.APIBase)
	assert.Equal(t, 30*time.Second, c.HTTP.Timeout)
}
