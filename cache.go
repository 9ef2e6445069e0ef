package folio

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/search"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = content.ErrNotFound

// Logger is the part of echo.Logger the background components use.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// session is one loaded collection and the search index built from it.
// Its context is cancelled when the session is replaced, which aborts any
// body fetches still in flight. While its index is loading, searches are
// served by fallback, the last Ready session it replaced on TTL expiry.
type session struct {
	posts    []content.Post
	index    *search.Index
	fetched  time.Time
	cancel   context.CancelFunc
	done     chan struct{}
	fallback *session
}

func (s *session) close() {
	s.cancel()
	s.index.Close()
	if s.fallback != nil {
		s.fallback.close()
		s.fallback = nil
	}
}

// PostCache is an in-memory cache of the post collection and its search
// index with TTL.
type PostCache struct {
	mu     sync.RWMutex
	sess   *session
	ttl    time.Duration
	source content.Source
	logger Logger
}

// NewPostCache creates a PostCache backed by the given Source.
func NewPostCache(src content.Source, ttl time.Duration, logger Logger) *PostCache {
	return &PostCache{source: src, ttl: ttl, logger: logger}
}

func (c *PostCache) valid() bool {
	return c.sess != nil && time.Since(c.sess.fetched) < c.ttl
}

// Invalidate drops the current session so the next read triggers a fresh
// load. Pending body fetches of the old session are cancelled and its
// index is not kept as a fallback.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	if c.sess != nil {
		c.sess.close()
		c.sess = nil
	}
	c.mu.Unlock()
}

// Close releases the current session.
func (c *PostCache) Close() {
	c.Invalidate()
}

func (c *PostCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	posts, err := c.source.Index(ctx)
	if err != nil {
		return err
	}
	content.SortByDate(posts)

	sctx, cancel := context.WithCancel(context.Background())
	s := &session{
		posts:   posts,
		index:   search.New(search.WithLogger(c.logger)),
		fetched: time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	if old := c.sess; old != nil {
		if old.index.State() == search.Ready {
			old.cancel()
			s.fallback = old
		} else {
			s.fallback = old.fallback
			old.fallback = nil
			old.close()
		}
	}
	c.sess = s

	go func() {
		defer close(s.done)
		err := s.index.Load(sctx, posts, c.source.Body)
		switch {
		case err == nil:
			if c.logger != nil {
				c.logger.Infof("search: indexed %d posts", len(posts))
			}
			c.mu.Lock()
			if s.fallback != nil {
				s.fallback.close()
				s.fallback = nil
			}
			c.mu.Unlock()
		case sctx.Err() == nil && c.logger != nil:
			c.logger.Warnf("search: index load: %v", err)
		}
	}()
	return nil
}

// ensureLoaded returns the current session after ensuring it is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded(ctx context.Context) (*session, error) {
	c.mu.RLock()
	if c.valid() {
		s := c.sess
		c.mu.RUnlock()
		return s, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return c.sess, nil
}

// ListPosts returns the collection, newest first.
func (c *PostCache) ListPosts(ctx context.Context) ([]content.Post, error) {
	s, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	return s.posts, nil
}

// GetPost returns a single post by filename from the cache.
func (c *PostCache) GetPost(ctx context.Context, filename string) (content.Post, error) {
	s, err := c.ensureLoaded(ctx)
	if err != nil {
		return content.Post{}, err
	}
	for _, p := range s.posts {
		if p.Filename == filename {
			return p, nil
		}
	}
	return content.Post{}, ErrNotFound
}

// Body fetches the raw Markdown of a post known to the collection.
func (c *PostCache) Body(ctx context.Context, filename string) (string, error) {
	if _, err := c.GetPost(ctx, filename); err != nil {
		return "", err
	}
	return c.source.Body(ctx, filename)
}

// Index returns the search index of the current session. While a reload
// after TTL expiry is still fetching bodies, the previous Ready index is
// returned instead. A first load or a load after Invalidate may still be
// in progress.
func (c *PostCache) Index(ctx context.Context) (*search.Index, error) {
	s, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	fb := s.fallback
	c.mu.RUnlock()
	if fb != nil && s.index.State() != search.Ready {
		return fb.index, nil
	}
	return s.index, nil
}

// WaitIndexed blocks until the current session's index has settled or ctx
// is done.
func (c *PostCache) WaitIndexed(ctx context.Context) error {
	s, err := c.ensureLoaded(ctx)
	if err != nil {
		return err
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
