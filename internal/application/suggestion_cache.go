package application

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// suggestionCache stores recently computed availability slots to avoid
// repeated scans for identical queries while bookings remain unchanged. Any
// write to the bookings table invalidates the whole cache.
type suggestionCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]suggestionCacheEntry
}

type suggestionCacheEntry struct {
	slots     []Slot
	expiresAt time.Time
}

func newSuggestionCache(ttl time.Duration, maxEntries int, now func() time.Time) *suggestionCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &suggestionCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]suggestionCacheEntry),
	}
}

func (c *suggestionCache) Get(key string) ([]Slot, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneSlots(entry.slots), true
}

func (c *suggestionCache) Store(key string, slots []Slot) {
	if c == nil {
		return
	}
	cloned := cloneSlots(slots)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = suggestionCacheEntry{slots: cloned, expiresAt: expiry}
}

func (c *suggestionCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]suggestionCacheEntry)
	c.mu.Unlock()
}

func (c *suggestionCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *suggestionCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneSlots(slots []Slot) []Slot {
	if len(slots) == 0 {
		return nil
	}
	out := make([]Slot, len(slots))
	copy(out, slots)
	return out
}

func buildSuggestionCacheKey(params AvailabilityParams) string {
	builder := strings.Builder{}
	builder.WriteString(params.RoomID)
	builder.WriteString("|")
	// The offset stays in the key because day boundaries follow the
	// caller's zone.
	builder.WriteString(params.Start.Format(time.RFC3339Nano))
	builder.WriteString("|")
	builder.WriteString(strconv.FormatInt(int64(params.Duration), 10))
	return builder.String()
}
