package state

import (
	"testing"

	"github.com/gooscar/icq2000/wire"
	"github.com/stretchr/testify/assert"
)

func TestStatus_WireRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusOnline, StatusAway, StatusDND, StatusOccupied, StatusNotAvailable, StatusFreeForChat, StatusInvisible} {
		wireStatus := s.ToWireStatus()
		assert.Equal(t, s, StatusFromWire(wireStatus))
	}
}

func TestStatus_OfflineNeverRoundTripsWire(t *testing.T) {
	// StatusOffline has no wire representation: it collapses to Online
	// if naively converted, which is why callers must apply it
	// out-of-band (DESIGN.md Open Question 1) rather than relying on
	// ToWireStatus/StatusFromWire to express it.
	assert.Equal(t, wire.ICQStatusOnline, StatusOffline.ToWireStatus())
}

func TestContact_NextSequenceWraps(t *testing.T) {
	c := NewContact(123)
	assert.Equal(t, uint16(0xFFFF), c.NextSequence())
	assert.Equal(t, uint16(0xFFFE), c.NextSequence())
}

func TestContact_PendingQueueFIFO(t *testing.T) {
	c := NewContact(123)
	c.Enqueue([]byte("one"))
	c.Enqueue([]byte("two"))

	got := c.DequeueAll()
	assert.Equal(t, [][]byte{[]byte("one"), []byte("two")}, got)
	assert.Empty(t, c.DequeueAll())
}

func TestContactList_GetOrCreate(t *testing.T) {
	l := NewContactList()
	c1 := l.GetOrCreate(42)
	c2 := l.GetOrCreate(42)
	assert.Same(t, c1, c2)
}

func TestContactList_RemoveClearsMobileIndex(t *testing.T) {
	l := NewContactList()
	c := NewContact(42)
	c.MobileNumber = "+15551234"
	l.Add(c)

	assert.Same(t, c, l.GetByMobile("+15551234"))
	l.Remove(42)

	// A fresh lookup creates a brand new mobile-only contact rather than
	// resurrecting the removed one.
	assert.NotSame(t, c, l.GetByMobile("+15551234"))
}
