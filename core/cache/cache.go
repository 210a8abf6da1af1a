package cache

import (
	"sync"
	"time"

	"retail.GO/config"
)

// Cache is a tagged TTL cache for read projections. Entries are stored in
// Redis when a client is configured, with an in-process sync.Map tier
// otherwise (and always, for tag bookkeeping). Values are stored as strings
// (pre-marshalled JSON) so both tiers behave the same.
type Cache struct {
	m        sync.Map // key -> item
	tagIndex sync.Map // tag -> *sync.Map of keys
}

var (
	once     sync.Once
	instance *Cache
)

func GetInstance() *Cache {
	once.Do(func() {
		instance = &Cache{}
	})
	return instance
}

type item struct {
	value     string
	expiresAt int64 // UnixNano; 0 means no expiration
}

// Set stores a value under key with a TTL and optional invalidation tags.
func (c *Cache) Set(key, value string, ttl time.Duration, tags ...string) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	c.m.Store(key, item{value: value, expiresAt: expiresAt})
	for _, tag := range tags {
		keysAny, _ := c.tagIndex.LoadOrStore(tag, &sync.Map{})
		keysAny.(*sync.Map).Store(key, struct{}{})
	}

	if rc := config.RedisClient; rc != nil {
		rc.Set(config.RedisCtx(), key, value, ttl)
	}
}

// Get returns the cached value for key if present and not expired.
func (c *Cache) Get(key string) (string, bool) {
	if v, ok := c.m.Load(key); ok {
		it := v.(item)
		if it.expiresAt > 0 && time.Now().UnixNano() > it.expiresAt {
			c.m.Delete(key)
		} else {
			return it.value, true
		}
	}

	if rc := config.RedisClient; rc != nil {
		if s, err := rc.Get(config.RedisCtx(), key).Result(); err == nil {
			return s, true
		}
	}
	return "", false
}

// Delete removes one key from both tiers.
func (c *Cache) Delete(key string) {
	c.m.Delete(key)
	if rc := config.RedisClient; rc != nil {
		rc.Del(config.RedisCtx(), key)
	}
}

// InvalidateTag removes every key registered under a tag.
func (c *Cache) InvalidateTag(tag string) {
	keysAny, ok := c.tagIndex.LoadAndDelete(tag)
	if !ok {
		return
	}
	keysAny.(*sync.Map).Range(func(key, _ interface{}) bool {
		c.Delete(key.(string))
		return true
	})
}

// Flush clears the in-process tier (for tests).
func (c *Cache) Flush() {
	c.m.Range(func(key, _ interface{}) bool {
		c.m.Delete(key)
		return true
	})
	c.tagIndex.Range(func(tag, _ interface{}) bool {
		c.tagIndex.Delete(tag)
		return true
	})
}
