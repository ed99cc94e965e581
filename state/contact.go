package state

import (
	"net"
	"strconv"

	"github.com/gooscar/icq2000/wire"
)

// IPv4ToUint32 parses a "host:port" or bare "host" string's IPv4
// address into the big-endian uint32 form used throughout the ICQ wire
// protocol's ExternalIP/LANIP fields. Non-IPv4 or unparsable addresses
// return 0.
func IPv4ToUint32(addr string) uint32 {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return 0
	}
	v4 := ip.To4()
	if v4 == nil {
		return 0
	}
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])
}

// Status mirrors the ICQ presence states, with an explicit Offline value
// that has no wire bitmask of its own: ToWireStatus maps it, like any
// value without a case, to the Online bitmask. Client.SetStatus never
// sends Offline (it disconnects instead), but the login burst
// advertises whatever status is recorded, so a client that never set
// one logs in as Online (see DESIGN.md, Open Question 1).
type Status int

const (
	StatusOffline Status = iota
	StatusOnline
	StatusAway
	StatusNotAvailable
	StatusOccupied
	StatusDND
	StatusFreeForChat
	StatusInvisible
)

// ToWireStatus converts a Status to the bitmask carried in
// UserInfoTLVICQStatus. StatusOffline has no wire representation of its
// own (a contact known to be offline simply has no UserInfo block at
// all) and falls to the default case, returning ICQStatusOnline.
func (s Status) ToWireStatus() uint32 {
	switch s {
	case StatusAway:
		return wire.ICQStatusAway
	case StatusNotAvailable:
		return wire.ICQStatusNA
	case StatusOccupied:
		return wire.ICQStatusOccupied
	case StatusDND:
		return wire.ICQStatusDND
	case StatusFreeForChat:
		return wire.ICQStatusFreeForChat
	case StatusInvisible:
		return wire.ICQStatusInvisible
	default:
		return wire.ICQStatusOnline
	}
}

// StatusFromWire converts a UserInfoTLVICQStatus bitmask into a Status.
// The caller is responsible for applying StatusOffline itself when a
// contact has no UserInfo block to parse (e.g. on a Buddy/Departed
// SNAC) -- this function only ever returns an "online in some form"
// status, by design (see DESIGN.md, Open Question 1).
func StatusFromWire(bits uint32) Status {
	switch {
	case bits&wire.ICQStatusInvisible != 0:
		return StatusInvisible
	case bits&wire.ICQStatusDND != 0:
		return StatusDND
	case bits&wire.ICQStatusOccupied != 0:
		return StatusOccupied
	case bits&wire.ICQStatusNA != 0:
		return StatusNotAvailable
	case bits&wire.ICQStatusAway != 0:
		return StatusAway
	case bits&wire.ICQStatusFreeForChat != 0:
		return StatusFreeForChat
	default:
		return StatusOnline
	}
}

// ProfileHomeInfo is the "home" detail sub-block of a contact's full
// profile (SPEC_FULL.md §5 supplemented feature).
type ProfileHomeInfo struct {
	Alias       string
	FirstName   string
	LastName    string
	Email       string
	City        string
	State       string
	PhoneNumber string
	FaxNumber   string
	Address     string
	CellPhone   string
	Zip         string
	CountryCode uint16
	Timezone    int8
	PublishEmail bool
}

// ProfileWorkInfo is the "work" detail sub-block.
type ProfileWorkInfo struct {
	City         string
	State        string
	PhoneNumber  string
	FaxNumber    string
	Address      string
	Zip          string
	CountryCode  uint16
	CompanyName  string
	Department   string
	Position     string
	OccupationCode uint16
	HomePage     string
}

// ProfileBackgroundInfo is the education/past-affiliation detail
// sub-block.
type ProfileBackgroundInfo struct {
	SchoolsAttended []string
	PastAffiliations []string
}

// ProfileAboutInfo is the free-text "about me" detail sub-block.
type ProfileAboutInfo struct {
	Text string
}

// Contact represents one entry in the client's contact list: identity,
// presence, and the connection-specific bookkeeping needed to route a
// message (direct vs. through the server).
type Contact struct {
	UIN uint32

	// MobileNumber is the phone number (country code + number) used to
	// address an SMS-capable mobile contact that has no ICQ UIN.
	MobileNumber string

	Alias     string
	FirstName string
	LastName  string
	Email     string

	Status         Status
	Invisible      bool
	AuthRequired   bool
	AwayMessage    string

	// TCPVersion is the peer's advertised direct-connection protocol
	// version (6 or 7); zero means unknown/never connected.
	TCPVersion uint8
	ExternalIP   uint32
	ExternalPort uint16
	LANIP        uint32
	LANPort      uint16
	DirectAllowed bool

	Capabilities wire.CapabilityList

	// GroupID/ItemID locate this contact's entry in the server-side
	// contact list (ServerList/Feedbag food group).
	GroupID uint16
	ItemID  uint16

	Home       *ProfileHomeInfo
	Work       *ProfileWorkInfo
	Background *ProfileBackgroundInfo
	About      *ProfileAboutInfo

	// NextSeq is this contact's outgoing message sequence number,
	// starting at 0xFFFF and decrementing, matching the legacy client's
	// convention for the advanced-message sequence field.
	NextSeq uint16

	// Pending holds ICBM payloads queued because no transport (direct or
	// server) is currently available to this contact.
	Pending [][]byte
}

// NewContact returns a Contact ready for use, with NextSeq initialized
// per the advanced-message sequence convention.
func NewContact(uin uint32) *Contact {
	return &Contact{UIN: uin, NextSeq: 0xFFFF}
}

// NextSequence returns the next outgoing sequence number and decrements
// the counter, wrapping at zero back to 0xFFFF.
func (c *Contact) NextSequence() uint16 {
	seq := c.NextSeq
	if c.NextSeq == 0 {
		c.NextSeq = 0xFFFF
	} else {
		c.NextSeq--
	}
	return seq
}

// Enqueue appends a payload to the contact's pending-message queue.
func (c *Contact) Enqueue(payload []byte) {
	c.Pending = append(c.Pending, payload)
}

// DequeueAll drains and returns every pending payload, in FIFO order.
func (c *Contact) DequeueAll() [][]byte {
	out := c.Pending
	c.Pending = nil
	return out
}

// ContactList is the UIN-keyed set of known contacts, with a secondary
// lookup for mobile-only (SMS) contacts that get lazily inserted the
// first time they're addressed.
type ContactList struct {
	byUIN    map[uint32]*Contact
	byMobile map[string]*Contact
}

// NewContactList returns an empty ContactList.
func NewContactList() *ContactList {
	return &ContactList{
		byUIN:    make(map[uint32]*Contact),
		byMobile: make(map[string]*Contact),
	}
}

// Add inserts or replaces a contact.
func (l *ContactList) Add(c *Contact) {
	l.byUIN[c.UIN] = c
	if c.MobileNumber != "" {
		l.byMobile[c.MobileNumber] = c
	}
}

// Get returns the contact for a UIN, if known.
func (l *ContactList) Get(uin uint32) (*Contact, bool) {
	c, ok := l.byUIN[uin]
	return c, ok
}

// GetOrCreate returns the contact for a UIN, creating and inserting an
// empty one if it doesn't already exist.
func (l *ContactList) GetOrCreate(uin uint32) *Contact {
	if c, ok := l.byUIN[uin]; ok {
		return c
	}
	c := NewContact(uin)
	l.Add(c)
	return c
}

// GetByMobile returns the contact for an SMS-addressable mobile number,
// lazily creating one (with no UIN) if it's being addressed for the
// first time.
func (l *ContactList) GetByMobile(number string) *Contact {
	if c, ok := l.byMobile[number]; ok {
		return c
	}
	c := &Contact{MobileNumber: number, NextSeq: 0xFFFF}
	l.byMobile[number] = c
	return c
}

// Remove deletes a contact by UIN.
func (l *ContactList) Remove(uin uint32) {
	if c, ok := l.byUIN[uin]; ok {
		if c.MobileNumber != "" {
			delete(l.byMobile, c.MobileNumber)
		}
		delete(l.byUIN, uin)
	}
}

// All returns every known contact, in unspecified order.
func (l *ContactList) All() []*Contact {
	out := make([]*Contact, 0, len(l.byUIN))
	for _, c := range l.byUIN {
		out = append(out, c)
	}
	return out
}

// ScreenName returns the UIN rendered as a decimal string, the form
// carried in LoginTLVScreenName and buddy-list TLVs.
func ScreenName(uin uint32) string {
	return strconv.FormatUint(uint64(uin), 10)
}
