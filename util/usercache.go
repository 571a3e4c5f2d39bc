package util

import (
	"container/list"
	"sync"

	"github.com/ariebrainware/medibook/model"
	"gorm.io/gorm"
)

const defaultUserEmailCacheSize = 1000

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// lru is a fixed capacity least-recently-used map safe for concurrent use.
type lru[K comparable, V any] struct {
	mu       sync.Mutex
	ll       *list.List
	items    map[K]*list.Element
	capacity int
}

func newLRU[K comparable, V any](capacity int) *lru[K, V] {
	return &lru[K, V]{ll: list.New(), items: make(map[K]*list.Element), capacity: capacity}
}

func (c *lru[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.items[key]; ok {
		c.ll.MoveToFront(ele)
		return ele.Value.(lruEntry[K, V]).value, true
	}
	var zero V
	return zero, false
}

func (c *lru[K, V]) set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.items[key]; ok {
		ele.Value = lruEntry[K, V]{key: key, value: value}
		c.ll.MoveToFront(ele)
		return
	}
	c.items[key] = c.ll.PushFront(lruEntry[K, V]{key: key, value: value})
	if c.ll.Len() > c.capacity {
		tail := c.ll.Back()
		delete(c.items, tail.Value.(lruEntry[K, V]).key)
		c.ll.Remove(tail)
	}
}

func (c *lru[K, V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// userCache maps user id to email for log lines. Nil disables caching.
var userCache *lru[uint, string]

// InitUserEmailCache initializes the LRU cache with given capacity.
// If capacity <= 0, a default of 1000 is used.
func InitUserEmailCache(capacity int) {
	if capacity <= 0 {
		capacity = defaultUserEmailCacheSize
	}
	userCache = newLRU[uint, string](capacity)
}

// UserEmailCacheGet returns email and true if present in cache.
func UserEmailCacheGet(userID uint) (string, bool) {
	if userCache == nil {
		return "", false
	}
	return userCache.get(userID)
}

// UserEmailCacheSet sets the email for a userID in the cache.
func UserEmailCacheSet(userID uint, email string) {
	if userCache == nil {
		return
	}
	userCache.set(userID, email)
}

// GetUserEmail returns the email for userID using cache, falling back to DB.
// If found in DB, caches the result.
func GetUserEmail(db *gorm.DB, userID uint) string {
	if userID == 0 {
		return ""
	}
	if email, ok := UserEmailCacheGet(userID); ok {
		return email
	}
	if db == nil {
		return ""
	}
	var u model.User
	if err := db.Select("email").Where("id = ?", userID).Take(&u).Error; err != nil {
		return ""
	}
	if u.Email != "" {
		UserEmailCacheSet(userID, u.Email)
	}
	return u.Email
}
