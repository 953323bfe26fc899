// Package display keeps the on-disk and decoded forms of snapshots that are
// currently shown, and releases them once a snapshot is no longer referenced.
package display

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/example/retouch/internal/history"
)

// DefaultCapacity bounds the number of live resources when New is given zero.
const DefaultCapacity = 8

// ErrClosed is returned by Acquire after Close.
var ErrClosed = errors.New("display registry closed")

// Resource is the displayable form of one snapshot.
type Resource struct {
	ID    string
	Name  string
	Path  string
	Image image.Image
}

// Registry binds snapshot IDs to resources. Evicted or released resources
// have their file removed.
type Registry struct {
	mu      sync.Mutex
	dir     string
	ownsDir bool
	cache   *lru.Cache[string, *Resource]
	closed  bool
}

// New creates a registry writing files under dir. An empty dir creates a
// private temporary directory that Close removes.
func New(dir string, capacity int) (*Registry, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	r := &Registry{dir: dir}
	if dir == "" {
		d, err := os.MkdirTemp("", "retouch-")
		if err != nil {
			return nil, fmt.Errorf("display dir: %w", err)
		}
		r.dir = d
		r.ownsDir = true
	}
	cache, err := lru.NewWithEvict[string, *Resource](capacity, func(_ string, res *Resource) {
		release(res)
	})
	if err != nil {
		return nil, err
	}
	r.cache = cache
	return r, nil
}

func release(res *Resource) {
	if res == nil || res.Path == "" {
		return
	}
	_ = os.Remove(res.Path)
}

// Dir returns the directory resource files are written to.
func (r *Registry) Dir() string { return r.dir }

// Acquire returns the resource for s, creating it on first use.
func (r *Registry) Acquire(s *history.Snapshot) (*Resource, error) {
	if s == nil {
		return nil, errors.New("acquire: nil snapshot")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	if res, ok := r.cache.Get(s.ID()); ok {
		return res, nil
	}
	img, err := s.Decode()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(r.dir, s.ID()+filepath.Ext(s.Name()))
	if filepath.Ext(path) == "" {
		path += "." + s.Format()
	}
	if err := os.WriteFile(path, s.Bytes(), 0o600); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	res := &Resource{ID: s.ID(), Name: s.Name(), Path: path, Image: img}
	r.cache.Add(s.ID(), res)
	return res, nil
}

// Retain releases every resource whose ID is not listed.
func (r *Registry) Retain(ids ...string) {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			keep[id] = true
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.cache.Keys() {
		if !keep[k] {
			r.cache.Remove(k)
		}
	}
}

// HistoryChanged keeps only the current and original snapshots of c.
func (r *Registry) HistoryChanged(c history.Change) {
	var ids []string
	if c.Current != nil {
		ids = append(ids, c.Current.ID())
	}
	if c.Original != nil {
		ids = append(ids, c.Original.ID())
	}
	r.Retain(ids...)
}

// Len returns the number of live resources.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}

// Close releases everything. The registry cannot be used afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.cache.Purge()
	if r.ownsDir {
		return os.RemoveAll(r.dir)
	}
	return nil
}
