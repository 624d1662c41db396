// Package geocache persists the last computed set of facility distances together with the
// origin they were computed from.
//
// There is one entry at a time and no time-based expiry: an entry is reused until the user
// moves more than geo.MovementThresholdMiles from its origin.
package geocache

import (
	"fmt"
	"sync"
	"time"

	"github.com/pfrederiksen/rec-schedule/internal/facility"
	"github.com/pfrederiksen/rec-schedule/internal/geo"
	"github.com/pfrederiksen/rec-schedule/internal/logger"
	"github.com/pfrederiksen/rec-schedule/internal/storage"
)

// Entry is a cached distance computation.
type Entry struct {
	Origin    geo.Coordinate       `json:"origin"`
	Timestamp time.Time            `json:"timestamp"`
	Centers   []facility.Distances `json:"centers"`
	Estimated bool                 `json:"estimated"`
}

// Cache reads and writes the single cache entry through a key-value store.
type Cache struct {
	mu sync.Mutex
	kv *storage.Store
}

// New creates a cache backed by kv.
func New(kv *storage.Store) *Cache {
	return &Cache{kv: kv}
}

// Get returns the cached entry, or nil when none is stored.
// A corrupt entry is logged and treated as absent.
func (c *Cache) Get() *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var entry Entry
	found, err := c.kv.Load(storage.KeyGeoCache, &entry)
	if err != nil {
		logger.Warn("Ignoring unreadable distance cache", logger.Fields{
			"error": err.Error(),
		})
		logger.IncrCounter("geocache.corrupt")
		return nil
	}
	if !found || !entry.Origin.Valid() {
		return nil
	}
	return &entry
}

// Set replaces the cached entry.
func (c *Cache) Set(entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if err := c.kv.Save(storage.KeyGeoCache, entry); err != nil {
		return fmt.Errorf("saving distance cache: %w", err)
	}
	return nil
}

// Clear removes the cached entry.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Delete(storage.KeyGeoCache); err != nil {
		return fmt.Errorf("clearing distance cache: %w", err)
	}
	return nil
}

// HasMoved reports whether current is more than the movement threshold away from the cached
// origin. It is true when nothing is cached.
func (c *Cache) HasMoved(current geo.Coordinate) bool {
	entry := c.Get()
	if entry == nil {
		return true
	}
	return !geo.Within(entry.Origin, current, geo.MovementThresholdMiles)
}
