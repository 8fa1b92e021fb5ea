package suggest

import (
	"context"

	"github.com/sandeepkv93/taskvault/internal/model"
)

// TagSource is the read side of the tag metadata store.
type TagSource interface {
	ListTags(ctx context.Context) ([]model.Tag, error)
}

// TagCache is a per-session, append-only cache of tag names, populated
// lazily from the tag store the first time names are needed. Mutating the
// tag store externally requires an Invalidate call; the cache does not
// watch for changes.
type TagCache struct {
	source TagSource
	names  []string
	seen   map[string]bool
	loaded bool
}

func NewTagCache(source TagSource) *TagCache {
	return &TagCache{seen: make(map[string]bool), source: source}
}

// Names returns the cached tag names in insertion order, loading from the
// source on first use. Source failures degrade to an empty cache rather
// than an error; suggestions are best effort.
func (c *TagCache) Names() []string {
	if !c.loaded {
		c.load(context.Background())
	}
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Add records a tag name, skipping duplicates.
func (c *TagCache) Add(name string) {
	if name == "" || c.seen[name] {
		return
	}
	c.seen[name] = true
	c.names = append(c.names, name)
}

// Invalidate drops the cache so the next read reloads from the source.
func (c *TagCache) Invalidate() {
	c.names = nil
	c.seen = make(map[string]bool)
	c.loaded = false
}

func (c *TagCache) load(ctx context.Context) {
	c.loaded = true
	if c.source == nil {
		return
	}
	tags, err := c.source.ListTags(ctx)
	if err != nil {
		return
	}
	for _, tag := range tags {
		c.Add(tag.Name)
	}
}
