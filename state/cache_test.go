package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetGetDelete(t *testing.T) {
	c := NewCache[string, int](time.Minute)
	c.Set("a", 1)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestCache_ICBMCookieKeys(t *testing.T) {
	c := NewCache[ICBMCookie, string](time.Minute)
	cookie := NewICBMCookie()
	c.Set(cookie, "pending-ack")

	v, ok := c.Get(cookie)
	assert.True(t, ok)
	assert.Equal(t, "pending-ack", v)
}

func TestUniqueICBMCookie_AvoidsCollision(t *testing.T) {
	c := NewCache[ICBMCookie, bool](time.Minute)
	first := NewICBMCookie()
	c.Set(first, true)

	calls := 0
	gen := func() ICBMCookie {
		calls++
		if calls == 1 {
			return first
		}
		return NewICBMCookie()
	}

	second := UniqueICBMCookie(c, gen)
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, calls)
}

func TestNewICBMCookie_NeverZero(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.NotEqual(t, ICBMCookie{}, NewICBMCookie())
	}
}

func TestCache_SweepFiresOnEvicted(t *testing.T) {
	c := NewCache[string, string](time.Millisecond)
	var evicted string
	c.OnEvicted(func(v string) { evicted = v })

	c.Set("a", "expired-payload")
	time.Sleep(5 * time.Millisecond)
	c.Sweep()

	assert.Equal(t, "expired-payload", evicted)
	_, ok := c.Get("a")
	assert.False(t, ok)
}
