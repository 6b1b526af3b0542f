package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	hfhub "github.com/gomlx/go-huggingface/hub"
)

// DefaultEndpoint is the public Hugging Face Hub.
const DefaultEndpoint = "https://huggingface.co"

// ErrUnauthorized is returned on 401 and 403 responses.
var ErrUnauthorized = errors.New("hub rejected the credentials")

// StatusError reports an unexpected hub response. It never carries the
// request URL or headers.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("hub %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("hub %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// Unwrap maps authentication failures to ErrUnauthorized.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// Model is one entry of a model listing.
type Model struct {
	ID           string    `json:"id"`
	Downloads    int       `json:"downloads"`
	Likes        int       `json:"likes"`
	Private      bool      `json:"private"`
	PipelineTag  string    `json:"pipeline_tag"`
	LastModified time.Time `json:"lastModified"`
}

// Client talks to a Hugging Face Hub instance.
type Client struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewClient creates a client. An empty endpoint selects DefaultEndpoint and
// an empty token sends anonymous requests.
func NewClient(endpoint, token string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		client:   &http.Client{Timeout: 10 * time.Minute},
	}
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// hubDownload fetches a file from the public hub into the shared cache
// layout under cacheDir.
var hubDownload = func(repoID, filename, token, cacheDir string) (string, error) {
	repo := hfhub.New(repoID).WithCacheDir(cacheDir)
	if token != "" {
		repo = repo.WithAuth(token)
	}
	return repo.DownloadFile(filename)
}

// Download fetches filename from the main revision of repoID into destDir
// and returns the local path. Files already present are not fetched again.
// The public hub is reached through go-huggingface; other endpoints, such
// as mirrors, use the resolve API directly.
func (c *Client) Download(ctx context.Context, repoID, filename, destDir string) (string, error) {
	if c.endpoint == DefaultEndpoint {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		path, err := hubDownload(repoID, filename, c.token, destDir)
		if err != nil {
			return "", fmt.Errorf("failed to download %s from %s: %w", filename, repoID, err)
		}
		return path, nil
	}

	dest := filepath.Join(destDir, filepath.FromSlash(filename))
	if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
		return dest, nil
	}

	u := fmt.Sprintf("%s/%s/resolve/main/%s", c.endpoint, repoID, escapePath(filename))
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", filename, err)
	}
	defer resp.Body.Close()
	if err := checkStatus("download", resp); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
	}
	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// ListModels returns the models published by author.
func (c *Client) ListModels(ctx context.Context, author string) ([]Model, error) {
	u := c.endpoint + "/api/models?" + url.Values{"author": {author}}.Encode()
	var models []Model
	if err := c.doJSON(ctx, "list models", http.MethodGet, u, nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}

// CreateRepo creates the model repository repoID ("namespace/name"). An
// existing repository is not an error.
func (c *Client) CreateRepo(ctx context.Context, repoID string, private bool) error {
	body := map[string]interface{}{
		"type":    "model",
		"private": private,
	}
	if ns, name, ok := strings.Cut(repoID, "/"); ok {
		body["organization"] = ns
		body["name"] = name
	} else {
		body["name"] = repoID
	}

	err := c.doJSON(ctx, "create repo", http.MethodPost, c.endpoint+"/api/repos/create", body, nil)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusConflict {
		return nil
	}
	return err
}

func (c *Client) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, u string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("hub %s failed: %w", op, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(op, resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var msg struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(data, &msg)
	return &StatusError{Op: op, StatusCode: resp.StatusCode, Message: msg.Error}
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
