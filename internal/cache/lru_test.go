package cache

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fintrack/internal/log"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_GetSetDelete(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", "1")
	c.Set("a", "2")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
	assert.Equal(t, 1, c.Size())

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	_, okC := c.Get("c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	clock.t = clock.t.Add(30 * time.Second)
	c.Set("c", "3")

	clock.t = clock.t.Add(45 * time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok)

	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 1, c.Size())
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestManager_CleanAll(t *testing.T) {
	logger := log.New(log.Config{Output: &bytes.Buffer{}})
	m := NewManager(logger)

	c, clock := newTestCache(10, time.Second)
	c.Set("a", "1")
	m.Register("test", c)
	clock.t = clock.t.Add(time.Hour)

	assert.Equal(t, 1, m.CleanAll())
	assert.Equal(t, 0, c.Size())

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
	m.Wait()
}
