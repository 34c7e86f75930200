package sha1store

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ruteri/bitstore/interfaces"
)

// DefaultGitHubAPI is the GitHub REST API root.
const DefaultGitHubAPI = "https://api.github.com"

// GitHubFetcher fetches git blob objects of a repository through GitHub's
// Git blob API. Keys are git object ids, i.e. the sha1 of the blob header
// followed by the content, so plain payload verification does not apply;
// the fetcher checks the git object id itself.
type GitHubFetcher struct {
	Owner string
	Repo  string
	// Token is an optional API token.
	Token string
	// BaseURL defaults to DefaultGitHubAPI.
	BaseURL string

	client *http.Client
	log    *slog.Logger
}

// GitHubBlob represents a Git blob object from GitHub's API
type GitHubBlob struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	URL      string `json:"url"`
	SHA      string `json:"sha"`
	Size     int    `json:"size"`
}

// NewGitHubFetcher creates a fetcher for blobs of owner/repo.
func NewGitHubFetcher(owner, repo string, log *slog.Logger) *GitHubFetcher {
	if log == nil {
		log = slog.Default()
	}
	return &GitHubFetcher{
		Owner:   owner,
		Repo:    repo,
		BaseURL: DefaultGitHubAPI,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// NewGitHubSource wraps a GitHubFetcher into a read-only sha1 source.
func NewGitHubSource(owner, repo, token string, log *slog.Logger) *APISource {
	fetcher := NewGitHubFetcher(owner, repo, log)
	fetcher.Token = token
	return NewAPISource(fetcher.name(), fetcher, false, log)
}

// GitBlobID returns the git object id of a blob holding data.
func GitBlobID(data []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(data))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// FetchSha1 returns the content of the blob with git object id key, or nil if
// the repository has no such blob.
func (f *GitHubFetcher) FetchSha1(ctx context.Context, key string) ([]byte, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/git/blobs/%s",
		strings.TrimSuffix(f.BaseURL, "/"), f.Owner, f.Repo, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Debug("GitHub API unavailable", "err", err)
		return nil, &interfaces.NotAvailableError{Store: f.name(), Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden || resp.StatusCode >= 500:
		body, _ := io.ReadAll(resp.Body)
		f.log.Debug("GitHub API unavailable",
			slog.String("status", resp.Status),
			slog.String("body", string(body)))
		return nil, &interfaces.NotAvailableError{Store: f.name(), Err: fmt.Errorf("GitHub API error: %s", resp.Status)}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("GitHub API error: %s, %s", resp.Status, string(body))
	}

	var blob GitHubBlob
	if err := json.NewDecoder(resp.Body).Decode(&blob); err != nil {
		return nil, fmt.Errorf("failed to decode blob: %w", err)
	}
	if blob.Encoding != "base64" {
		return nil, fmt.Errorf("unexpected blob encoding: %s", blob.Encoding)
	}

	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(blob.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode blob content: %w", err)
	}

	if id := GitBlobID(data); id != key {
		f.log.Warn("Git blob id mismatch",
			slog.String("expected", key),
			slog.String("actual", id))
		return nil, &interfaces.InvalidDataError{Store: f.name(), Key: key}
	}

	f.log.Debug("Fetched blob from GitHub",
		slog.String("sha1", key),
		slog.Int("size", len(data)))

	return data, nil
}

func (f *GitHubFetcher) name() string {
	return fmt.Sprintf("github-%s-%s", f.Owner, f.Repo)
}
