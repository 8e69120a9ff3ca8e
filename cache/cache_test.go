package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetAndGet(t *testing.T) {
	c := New[string, int]()
	c.Set("a", 1)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestSetWithTTLExpires(t *testing.T) {
	c := New[string, string]()
	c.SetWithTTL("short", "gone soon", 10*time.Millisecond)
	c.SetWithTTL("forever", "stays", 0)

	v, ok := c.Get("short")
	assert.True(t, ok)
	assert.Equal(t, "gone soon", v)

	time.Sleep(20 * time.Millisecond)

	_, ok = c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("forever")
	assert.True(t, ok)
}

func TestDefaultTTLAppliesToSet(t *testing.T) {
	c := New(WithDefaultTTL[string, int](10 * time.Millisecond))
	c.Set("a", 1)

	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	c := New[string, int]()
	c.Set("a", 1)
	c.Delete("a")

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestKeysSkipsExpired(t *testing.T) {
	c := New[string, int]()
	c.Set("live", 1)
	c.SetWithTTL("dead", 2, time.Nanosecond)

	time.Sleep(time.Millisecond)

	assert.Equal(t, []string{"live"}, c.Keys())
}

func TestPurgeDropsExpiredEntries(t *testing.T) {
	c := New[string, int]()
	c.Set("live", 1)
	c.SetWithTTL("dead1", 2, time.Nanosecond)
	c.SetWithTTL("dead2", 3, time.Nanosecond)

	time.Sleep(time.Millisecond)

	assert.Equal(t, 2, c.Purge())
	assert.Equal(t, 1, c.Len())
}
