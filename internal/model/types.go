package model

// Release is the subset of the GitHub release payload that assetrank uses.
type Release struct {
	ID         int64   `json:"id"`
	TagName    string  `json:"tag_name"`
	Name       string  `json:"name"`
	Draft      bool    `json:"draft"`
	Prerelease bool    `json:"prerelease"`
	Assets     []Asset `json:"assets"`
}

// Asset is the subset of the GitHub release asset payload that assetrank uses.
type Asset struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	BrowserDownloadUrl string `json:"browser_download_url"`
	Size               int64  `json:"size"`
	ContentType        string `json:"content_type"`
	DownloadCount      *int64 `json:"download_count"`
}

// DisplayName returns the release title, falling back to the tag.
func (r *Release) DisplayName() string {
	if r.Name != "" && r.Name != r.TagName {
		return r.Name + " (" + r.TagName + ")"
	}
	return r.TagName
}
