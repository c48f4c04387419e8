package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

const (
	// Branch every upload is committed to.
	Branch = "main"
	// UserAgent identifies this client; the GitHub API rejects requests without one.
	UserAgent = "ghdrop-uploader"
)

// GitHubConfig is the immutable configuration of the GitHub content store.
type GitHubConfig struct {
	Token   string
	Repo    string
	Owner   string
	APIBase string
	Timeout time.Duration
}

// UpstreamError is returned when the remote store rejects a write or
// answers with a body that does not carry the expected fields.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// GitHubStorage implements Storage by committing files through the
// repository contents API.
type GitHubStorage struct {
	cfg    GitHubConfig
	client *http.Client
	logger log.Logger
}

type putContentRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
}

type putContentResponse struct {
	Content *struct {
		HTMLURL string `json:"html_url"`
	} `json:"content"`
}

type apiError struct {
	Message string `json:"message"`
}

// NewGitHubStorage returns a GitHubStorage. A nil client gets a default
// client using cfg.Timeout.
func NewGitHubStorage(cfg GitHubConfig, client *http.Client, logger log.Logger) *GitHubStorage {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.github.com"
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	return &GitHubStorage{cfg: cfg, client: client, logger: logger}
}

// Label implements Storage.
func (s *GitHubStorage) Label() string {
	return "GitHub"
}

// Ready implements Storage.
func (s *GitHubStorage) Ready() error {
	if s.cfg.Token == "" || s.cfg.Repo == "" || s.cfg.Owner == "" {
		return ErrNotConfigured
	}
	return nil
}

// Put commits obj to the configured branch and returns the content's html_url.
func (s *GitHubStorage) Put(ctx context.Context, obj Object) (string, error) {
	payload, err := json.Marshal(putContentRequest{
		Message: "Upload file: " + obj.Name,
		Content: base64.StdEncoding.EncodeToString(obj.Content),
		Branch:  Branch,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.contentsURL(obj.Path), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "token "+s.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("put contents %q: %w", obj.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		level.Error(s.logger).Log("method", "Put", "path", obj.Path, "status", resp.StatusCode, "err", apiErr.Message)

		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    "GitHub API Error: " + msg,
		}
	}

	var out putContentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    "GitHub API Error: invalid response body: " + err.Error(),
		}
	}
	if out.Content == nil || out.Content.HTMLURL == "" {
		return "", &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    "GitHub API Error: response is missing content.html_url",
		}
	}

	level.Info(s.logger).Log("method", "Put", "path", obj.Path, "bytes", len(obj.Content), "url", out.Content.HTMLURL)
	return out.Content.HTMLURL, nil
}

// contentsURL builds {api}/repos/{owner}/{repo}/contents/{path}, escaping
// each path segment.
func (s *GitHubStorage) contentsURL(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		s.cfg.APIBase,
		url.PathEscape(s.cfg.Owner),
		url.PathEscape(s.cfg.Repo),
		strings.Join(segments, "/"),
	)
}
