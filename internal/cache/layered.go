package cache

import "time"

// LayeredCache fronts a disk cache with a memory cache: reads try
// memory first, writes go through to both. Disk hits are promoted to
// memory so hot prompts pay the file read once.
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a layered cache over diskDir.
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 0),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get returns the response for key from the fastest layer that has it.
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}
	val, found := c.disk.Get(key)
	if !found {
		return nil, false
	}
	_ = c.memory.Set(key, val, 0)
	return val, true
}

// Set writes the response through to both layers.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

// Delete removes the entry from both layers.
func (c *LayeredCache) Delete(key string) error {
	memErr := c.memory.Delete(key)
	diskErr := c.disk.Delete(key)
	if memErr != nil {
		return memErr
	}
	return diskErr
}

// Clear drops both layers.
func (c *LayeredCache) Clear() error {
	if err := c.memory.Clear(); err != nil {
		return err
	}
	return c.disk.Clear()
}
