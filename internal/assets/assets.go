// Package assets resolves and loads the images referenced by material
// libraries.
package assets

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/objatlas/internal/logger"
	"github.com/Faultbox/objatlas/pkg/encoding"
	"github.com/Faultbox/objatlas/pkg/texture"
)

// ErrAssetNotFound is returned when a reference resolves under no root.
var ErrAssetNotFound = errors.New("asset not found")

// Loader resolves image references against a list of search roots and keeps
// decoded images in a cache keyed by resolved path.
type Loader struct {
	roots []string
	cache *Cache
	mu    sync.RWMutex
}

// NewLoader creates a loader searching the given roots.
func NewLoader(roots ...string) *Loader {
	l := &Loader{cache: NewCache()}
	for _, r := range roots {
		l.AddRoot(r)
	}
	return l
}

// AddRoot adds a search root.
// Roots are searched in reverse order (last added = highest priority).
func (l *Loader) AddRoot(dir string) {
	if dir == "" {
		dir = "."
	}
	l.mu.Lock()
	l.roots = append(l.roots, filepath.Clean(dir))
	l.mu.Unlock()
}

// Roots returns the search roots in the order they were added.
func (l *Loader) Roots() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.roots...)
}

// Resolve maps a reference as written in a material library to a file path.
// Absolute references are used as is.
func (l *Loader) Resolve(ref string) (string, error) {
	norm := encoding.NormalizeAssetPath(ref)
	if norm == "" || norm == "." {
		return "", fmt.Errorf("%w: empty reference", ErrAssetNotFound)
	}
	local := filepath.FromSlash(norm)

	if filepath.IsAbs(local) {
		if isFile(local) {
			return local, nil
		}
		return "", fmt.Errorf("%w: %s", ErrAssetNotFound, ref)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.roots) - 1; i >= 0; i-- {
		p := filepath.Join(l.roots[i], local)
		if isFile(p) {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: %s (searched %d roots)", ErrAssetNotFound, ref, len(l.roots))
}

// Image resolves ref and returns its decoded pixels. A path already decoded
// is served from the cache; callers must not modify the returned image.
func (l *Loader) Image(ref string) (*image.RGBA, string, error) {
	p, err := l.Resolve(ref)
	if err != nil {
		return nil, "", err
	}

	if img, ok := l.cache.Get(p); ok {
		logger.Debug("image cache hit", zap.String("path", p))
		return img, p, nil
	}

	img, err := texture.DecodeFile(p)
	if err != nil {
		return nil, p, err
	}
	l.cache.Set(p, img)
	logger.Debug("image loaded",
		zap.String("path", p),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))

	return img, p, nil
}

// Stats returns cache statistics.
func (l *Loader) Stats() (hits, misses int) {
	return l.cache.Stats()
}

// Close drops every cached image.
func (l *Loader) Close() {
	l.cache.Clear()
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Cache is a simple in-memory cache for decoded images.
type Cache struct {
	data map[string]*image.RGBA
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*image.RGBA),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (*image.RGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	img, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return img, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, img *image.RGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = img
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*image.RGBA)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
