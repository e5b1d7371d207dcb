package greensite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenusek/greensite/cms"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = cms.ErrNotFound

// ContentSource is the subset of the CMS API the site reads and writes.
// *cms.Client satisfies it.
type ContentSource interface {
	GetPosts(ctx context.Context, q cms.PostsQuery) (*cms.PostsResult, error)
	GetPost(ctx context.Context, slug string) (*cms.Post, error)
	GetRelatedPosts(ctx context.Context, slug string, limit int) ([]cms.Post, error)
	GetTags(ctx context.Context) ([]cms.Tag, error)
	GetComments(ctx context.Context, slug string, page, limit int) (*cms.CommentsResult, error)
	CreateComment(ctx context.Context, in cms.CreateCommentInput) error
}

type cacheEntry struct {
	value   any
	fetched time.Time
}

// ContentCache is an in-memory TTL cache of CMS reads. When the CMS fails and
// a Store is attached, reads are answered from the last saved snapshots.
// Comments are never cached.
type ContentCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	source  ContentSource
	store   *Store
	logger  echo.Logger
}

// NewContentCache creates a ContentCache over src. store may be nil.
func NewContentCache(src ContentSource, store *Store, ttl time.Duration, logger echo.Logger) *ContentCache {
	return &ContentCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		source:  src,
		store:   store,
		logger:  logger,
	}
}

// Invalidate clears the cache so the next read goes to the CMS.
func (c *ContentCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

func (c *ContentCache) lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || time.Since(e.fetched) >= c.ttl {
		return nil, false
	}
	return e.value, true
}

func (c *ContentCache) put(key string, v any) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: v, fetched: time.Now()}
	c.mu.Unlock()
}

// cached returns the fresh entry for key or calls load and caches its result.
// The lock is not held across load.
func cached[T any](c *ContentCache, key string, load func() (T, error)) (T, error) {
	if v, ok := c.lookup(key); ok {
		return v.(T), nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.put(key, v)
	return v, nil
}

func (c *ContentCache) warnf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Warnf(format, args...)
	}
}

// ListPosts returns one page of posts.
func (c *ContentCache) ListPosts(ctx context.Context, q cms.PostsQuery) (*cms.PostsResult, error) {
	key := fmt.Sprintf("posts:%d:%d:%s:%s", q.Page, q.Limit, q.Query, strings.Join(q.Tags, ","))
	return cached(c, key, func() (*cms.PostsResult, error) {
		res, err := c.source.GetPosts(ctx, q)
		if err == nil || c.store == nil || ctx.Err() != nil {
			return res, err
		}
		snap, serr := c.store.ListPosts(q)
		if serr != nil || snap.Pagination.TotalPosts == 0 {
			return nil, err
		}
		c.warnf("cms: list posts: %v; serving snapshots", err)
		return snap, nil
	})
}

// GetPost returns the post with slug, or ErrNotFound. Successful reads are
// snapshotted; a post the CMS no longer has is dropped from the snapshots.
func (c *ContentCache) GetPost(ctx context.Context, slug string) (*cms.Post, error) {
	return cached(c, "post:"+slug, func() (*cms.Post, error) {
		post, err := c.source.GetPost(ctx, slug)
		switch {
		case err == nil:
			if c.store != nil {
				if serr := c.store.SavePost(*post); serr != nil {
					c.warnf("snapshot: save %s: %v", slug, serr)
				}
			}
			return post, nil
		case errors.Is(err, cms.ErrNotFound):
			if c.store != nil {
				if serr := c.store.DeletePost(slug); serr != nil {
					c.warnf("snapshot: delete %s: %v", slug, serr)
				}
			}
			return nil, ErrNotFound
		case c.store == nil || ctx.Err() != nil:
			return nil, err
		}
		snap, serr := c.store.GetPost(slug)
		if serr != nil {
			if !errors.Is(serr, sql.ErrNoRows) {
				c.warnf("snapshot: get %s: %v", slug, serr)
			}
			return nil, err
		}
		c.warnf("cms: get post %s: %v; serving snapshot", slug, err)
		return &snap, nil
	})
}

// RelatedPosts returns up to limit posts related to slug. Without the CMS,
// snapshots sharing a tag with the post stand in.
func (c *ContentCache) RelatedPosts(ctx context.Context, slug string, limit int) ([]cms.Post, error) {
	return cached(c, fmt.Sprintf("related:%s:%d", slug, limit), func() ([]cms.Post, error) {
		posts, err := c.source.GetRelatedPosts(ctx, slug, limit)
		if err == nil || c.store == nil || ctx.Err() != nil {
			return posts, err
		}
		current, serr := c.store.GetPost(slug)
		if serr != nil {
			return nil, err
		}
		snap, serr := c.store.ListPosts(cms.PostsQuery{Tags: current.TagNames(), Limit: limit + 1})
		if serr != nil {
			return nil, err
		}
		related := FilterRelatedPosts(current, snap.Posts)
		if len(related) > limit {
			related = related[:limit]
		}
		c.warnf("cms: related posts %s: %v; serving snapshots", slug, err)
		return related, nil
	})
}

// ListTags returns every tag of the blog.
func (c *ContentCache) ListTags(ctx context.Context) ([]cms.Tag, error) {
	return cached(c, "tags", func() ([]cms.Tag, error) {
		tags, err := c.source.GetTags(ctx)
		if err == nil || c.store == nil || ctx.Err() != nil {
			return tags, err
		}
		snap, serr := c.store.ListTags()
		if serr != nil {
			return nil, err
		}
		c.warnf("cms: list tags: %v; serving snapshots", err)
		return snap, nil
	})
}

// FilterRelatedPosts finds posts that share at least one tag with current.
func FilterRelatedPosts(current cms.Post, posts []cms.Post) []cms.Post {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		if tag := normalizeTag(t.Name); tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	related := []cms.Post{}
	for _, p := range posts {
		if p.Slug == current.Slug {
			continue
		}
		for _, t := range p.Tags {
			if _, ok := tagSet[normalizeTag(t.Name)]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}
