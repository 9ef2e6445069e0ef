package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Source provides the post collection and raw post bodies.
type Source interface {
	Index(ctx context.Context) ([]Post, error)
	Body(ctx context.Context, filename string) (string, error)
}

// ValidFilename reports whether name is a plain Markdown file name with no
// directory components.
func ValidFilename(name string) bool {
	if name == "" || name != path.Base(name) || name != filepath.Base(name) {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return false
	}
	return strings.HasSuffix(name, ".md")
}

// FileSource reads posts from a local directory.
type FileSource struct {
	Dir string
}

// Index returns the entries of the directory's posts index, or builds them
// from the Markdown files when no index has been generated.
func (s FileSource) Index(ctx context.Context) ([]Post, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, IndexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return BuildIndex(ctx, s.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return decodeIndex(data)
}

// Body returns the raw Markdown of filename.
func (s FileSource) Body(ctx context.Context, filename string) (string, error) {
	if !ValidFilename(filename) {
		return "", fmt.Errorf("%q: %w", filename, ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, filename))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%q: %w", filename, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read post %q: %w", filename, err)
	}
	return string(data), nil
}

// HTTPSource fetches the index and bodies from a static file origin, for
// example "https://example.com/posts".
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource returns an HTTPSource with a client timeout.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Index fetches and decodes the posts index.
func (s *HTTPSource) Index(ctx context.Context) ([]Post, error) {
	data, err := s.get(ctx, IndexFile)
	if err != nil {
		return nil, err
	}
	return decodeIndex(data)
}

// Body fetches the raw Markdown of filename.
func (s *HTTPSource) Body(ctx context.Context, filename string) (string, error) {
	if !ValidFilename(filename) {
		return "", fmt.Errorf("%q: %w", filename, ErrNotFound)
	}
	data, err := s.get(ctx, url.PathEscape(filename))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *HTTPSource) get(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/"+name, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", name, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

func decodeIndex(data []byte) ([]Post, error) {
	var posts []Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

// BuildIndex parses every Markdown file in dir into an index entry. Files
// are read concurrently; entries keep directory order.
func BuildIndex(ctx context.Context, dir string) ([]Post, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("posts dir %q: %w", dir, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read posts dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && ValidFilename(e.Name()) {
			names = append(names, e.Name())
		}
	}

	posts := make([]Post, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return fmt.Errorf("read post %q: %w", name, err)
			}
			posts[i] = BuildPost(name, string(data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return posts, nil
}

// WriteIndex builds the index for dir and writes it to dir/posts-index.json
// with two-space indentation. It returns the number of posts written.
func WriteIndex(ctx context.Context, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create posts dir: %w", err)
	}
	posts, err := BuildIndex(ctx, dir)
	if err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(posts); err != nil {
		return 0, fmt.Errorf("encode index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, IndexFile), buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("write index: %w", err)
	}
	return len(posts), nil
}
