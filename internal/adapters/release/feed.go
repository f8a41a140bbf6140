package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/bnema/packybar/internal/domain"
	"github.com/bnema/packybar/internal/ports"
)

const (
	defaultFeedURL = "https://api.github.com/repos/bnema/packybar/releases/latest"

	metadataTimeout = 10 * time.Second
	downloadTimeout = 30 * time.Second

	maxMetadataSize = 1 << 20
)

// Feed fetches release metadata and assets from the hosted release endpoint.
type Feed struct {
	metadataClient *http.Client
	downloadClient *http.Client
	feedURL        string
	userAgent      string
}

var _ ports.ReleaseFeed = (*Feed)(nil)

type FeedOption func(*Feed)

func WithFeedURL(feedURL string) FeedOption {
	return func(f *Feed) {
		f.feedURL = feedURL
	}
}

func WithHTTPClients(metadata, download *http.Client) FeedOption {
	return func(f *Feed) {
		f.metadataClient = metadata
		f.downloadClient = download
	}
}

func NewFeed(userAgent string, opts ...FeedOption) *Feed {
	feed := &Feed{
		metadataClient: &http.Client{Timeout: metadataTimeout},
		downloadClient: &http.Client{Timeout: downloadTimeout},
		feedURL:        defaultFeedURL,
		userAgent:      userAgent,
	}

	for _, opt := range opts {
		opt(feed)
	}

	return feed
}

type releasePayload struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

func (f *Feed) Latest(ctx context.Context) (domain.Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.feedURL, nil)
	if err != nil {
		return domain.Release{}, fmt.Errorf("create release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.metadataClient.Do(req)
	if err != nil {
		return domain.Release{}, fmt.Errorf("fetch latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.Release{}, fmt.Errorf("fetch latest release: %w", domain.NewStatusError(resp.StatusCode))
	}

	var payload releasePayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetadataSize)).Decode(&payload); err != nil {
		return domain.Release{}, fmt.Errorf("decode release payload: %w", err)
	}

	release := domain.Release{Tag: payload.TagName, HTMLURL: payload.HTMLURL}
	for _, asset := range payload.Assets {
		release.Assets = append(release.Assets, domain.ReleaseAsset{
			Name:        asset.Name,
			DownloadURL: asset.BrowserDownloadURL,
		})
	}

	return release, nil
}

// Download streams one asset into destDir and returns the file path. The
// file name is taken from the URL path.
func (f *Feed) Download(ctx context.Context, assetURL, destDir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return "", fmt.Errorf("create download request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.downloadClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download asset: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download asset: %w", domain.NewStatusError(resp.StatusCode))
	}

	destPath := filepath.Join(destDir, assetFileName(assetURL))

	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create asset file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(destPath)
		return "", fmt.Errorf("write asset file: %w", err)
	}

	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close asset file: %w", err)
	}

	return destPath, nil
}

func assetFileName(assetURL string) string {
	parsed, err := url.Parse(assetURL)
	if err != nil || path.Base(parsed.Path) == "/" || path.Base(parsed.Path) == "." {
		return "asset.download"
	}

	return path.Base(parsed.Path)
}
