// Package state holds the client's in-memory session data: the contact
// list, connection state machine, and the short-lived caches that track
// in-flight requests (ICBM cookies, request IDs, direct-connection
// sequence numbers).
package state

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache is a generic, time-indexed store wrapping patrickmn/go-cache,
// grounded on the teacher's foodgroup/icbm.go convoTracker, which backs
// ICBM warning/conversation tracking with the same library. Every cache
// this library needs (ICBM cookies, request IDs, direct-connection
// sequence numbers) is an instance of this generic wrapper keyed
// differently, rather than a bespoke type per concern. Direct clients
// and their sockets are held in plain maps on client.Client, not here.
type Cache[K comparable, V any] struct {
	c   *cache.Cache
	ttl time.Duration

	// deleting is set while Delete runs: go-cache fires its eviction
	// callback on explicit deletes too, and OnEvicted skips those.
	deleting bool
}

// NewCache returns a Cache whose entries expire after ttl. No background
// janitor goroutine is started (cleanupInterval is disabled): the
// embedder's Poll() call drives expiry explicitly via Sweep, matching
// the library's single-threaded, no-background-thread concurrency model
// (spec.md §5). A zero ttl disables expiry (entries live until deleted
// or the process exits).
func NewCache[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{c: cache.New(ttl, cache.NoExpiration), ttl: ttl}
}

// Sweep deletes every expired entry, firing any OnEvicted callback for
// each. Called from the embedder-driven Poll() entry point rather than
// from a background timer.
func (c *Cache[K, V]) Sweep() {
	c.c.DeleteExpired()
}

// Set stores v under k, resetting its expiry to the cache's default TTL.
func (c *Cache[K, V]) Set(k K, v V) {
	c.c.Set(keyString(k), v, c.ttl)
}

// SetWithTTL stores v under k with an explicit expiry, overriding the
// cache's default. Nothing in this library calls it: the
// direct-connection ack cache gets its longer post-handshake TTL by
// being replaced with a new Cache (direct.DirectClient.TransitionConnected).
func (c *Cache[K, V]) SetWithTTL(k K, v V, ttl time.Duration) {
	c.c.Set(keyString(k), v, ttl)
}

// OnEvicted registers fn to run whenever an entry expires on its own
// (not via explicit Delete), passed the expired value. Used to finalize
// a pending message ack as delivered=false on cookie-cache expiry
// (spec.md §4.5, §7 "Timeout").
func (c *Cache[K, V]) OnEvicted(fn func(V)) {
	c.c.OnEvicted(func(_ string, v any) {
		if c.deleting {
			return
		}
		fn(v.(V))
	})
}

// Get returns the value stored under k, if present and unexpired.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	var zero V
	raw, found := c.c.Get(keyString(k))
	if !found {
		return zero, false
	}
	return raw.(V), true
}

// Delete removes k unconditionally.
func (c *Cache[K, V]) Delete(k K) {
	c.deleting = true
	c.c.Delete(keyString(k))
	c.deleting = false
}

// Len reports the number of entries held, including expired ones that
// Sweep has not yet removed.
func (c *Cache[K, V]) Len() int {
	return c.c.ItemCount()
}

func keyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	// Reached for ICBMCookie (an [8]byte array) and scalar key types
	// (uint16/uint32/uint64 request IDs and sequence numbers); fmt.Sprint
	// renders both deterministically without a reflection-based key codec.
	return fmt.Sprint(k)
}

// ICBMCookie is the 8-byte randomly generated message identifier
// threaded through an ICBM exchange and its ack (spec.md §4.5).
type ICBMCookie [8]byte

// NewICBMCookie returns a random, non-zero cookie. The all-zero cookie
// is reserved and never generated, matching the source library's
// convention of treating a zero cookie as "no cookie".
func NewICBMCookie() ICBMCookie {
	var c ICBMCookie
	for {
		for i := range c {
			c[i] = byte(rand.Intn(256))
		}
		if c != (ICBMCookie{}) {
			return c
		}
	}
}

// UniqueICBMCookie draws cookies from gen (normally NewICBMCookie) until
// it finds one not already present in cache, using rejection sampling
// to guarantee no in-flight cookie collides with another -- the cache
// is the single owner of cookie uniqueness (spec.md §3, "single-owner
// pattern").
func UniqueICBMCookie[V any](c *Cache[ICBMCookie, V], gen func() ICBMCookie) ICBMCookie {
	for {
		candidate := gen()
		if _, exists := c.Get(candidate); !exists {
			return candidate
		}
	}
}
