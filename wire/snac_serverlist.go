package wire

// ServerList (Feedbag, food group 13) SNAC bodies: the server-stored
// contact list's item representation and the request/reply/ack shapes
// built from it (spec.md §4.6).

// FeedbagClassID distinguishes a buddy entry from a group entry (and
// the handful of other list classes the protocol defines) within one
// flat FeedbagItem stream.
type FeedbagClassID uint16

const (
	FeedbagClassBuddy FeedbagClassID = 0x0000
	FeedbagClassGroup FeedbagClassID = 0x0001
	FeedbagClassPermit FeedbagClassID = 0x0002
	FeedbagClassDeny   FeedbagClassID = 0x0003
)

// FeedbagItem is one entry in the server-stored list: a buddy, a
// group, or one of the permit/deny/visibility classes, keyed by
// (GroupID, ItemID) and carrying attribute TLVs (nickname comment,
// auth-required flag, etc.) (spec.md §4.6, "group id, item id,
// nickname, auth-required flag"). Grounded on the teacher's
// wire.FeedbagItem (OSCAR food group 0x13).
type FeedbagItem struct {
	Name    string `icq:"len_prefix=uint16"`
	GroupID uint16
	ItemID  uint16
	ClassID FeedbagClassID
	TLVLBlock
}

// FeedbagItem attribute TLV tags nested in TLVLBlock.
const (
	FeedbagAttrBuddyComment   uint16 = 0x0131
	FeedbagAttrAwaitingAuth   uint16 = 0x0066 // present (any value) means this buddy still needs authorization
	FeedbagAttrAlertAction    uint16 = 0x0067
)

// AwaitingAuth reports whether this item carries the
// awaiting-authorization attribute (spec.md §4.6 "auth-required flag").
func (i FeedbagItem) AwaitingAuth() bool { return i.Has(FeedbagAttrAwaitingAuth) }

// SNAC_0x0D_0x04_ServerListQuery asks the server for the full list; no
// body when requesting unconditionally (sent once at login, spec.md
// §4.6/§4.8 login burst).
type SNAC_0x0D_0x04_ServerListQuery struct{}

// SNAC_0x0D_0x06_ServerListReply is the full contact list snapshot.
type SNAC_0x0D_0x06_ServerListReply struct {
	Version    uint8
	Items      []FeedbagItem `icq:"count_prefix=uint16"`
	LastUpdate uint32
}

// SNAC_0x0D_0x07_ServerListUse tells the server the client has
// finished processing the list it just received (spec.md §4.6, "edit
// finish").
type SNAC_0x0D_0x07_ServerListUse struct{}

// SNAC_0x0D_0x08_ServerListInsertItem adds one or more new items.
type SNAC_0x0D_0x08_ServerListInsertItem struct {
	Items []FeedbagItem
}

// SNAC_0x0D_0x09_ServerListUpdateItem edits one or more existing items
// in place (matched by GroupID/ItemID).
type SNAC_0x0D_0x09_ServerListUpdateItem struct {
	Items []FeedbagItem
}

// SNAC_0x0D_0x0A_ServerListDeleteItem removes one or more items,
// identified by GroupID/ItemID (Name/ClassID/attributes are ignored by
// the server on delete but carried for symmetry with insert/update).
type SNAC_0x0D_0x0A_ServerListDeleteItem struct {
	Items []FeedbagItem
}

// FeedbagResult codes returned in SNAC_0x0D_0x0E_ServerListStatus, one
// per item in the insert/update/delete request that produced it
// (spec.md §4.6, "modification acks with result codes").
const (
	FeedbagResultSuccess      uint16 = 0x0000
	FeedbagResultFailed       uint16 = 0x0001
	FeedbagResultAuthRequired uint16 = 0x0002
	FeedbagResultAlreadyExists uint16 = 0x0003
)

// SNAC_0x0D_0x0E_ServerListStatus acknowledges an insert/update/delete
// request, one result code per submitted item, in order.
type SNAC_0x0D_0x0E_ServerListStatus struct {
	Results []uint16
}

// SNAC_0x0D_0x11_ServerListStartCluster and
// SNAC_0x0D_0x12_ServerListEndCluster bracket a batch of edits so the
// server applies them atomically (spec.md §4.6, "edit start ...
// edit-finish").
type SNAC_0x0D_0x11_ServerListStartCluster struct {
	TLVRestBlock
}

type SNAC_0x0D_0x12_ServerListEndCluster struct{}
