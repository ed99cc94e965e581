package wire

// General (food group 1) SNAC bodies exchanged during and after login
// (spec.md §4.6).

// SNAC_0x01_0x03_ServerReady lists the food groups and versions the server
// supports, sent once the authorizer->BOS handshake completes.
type SNAC_0x01_0x03_ServerReady struct {
	FoodGroupVersions []uint16
}

// SNAC_0x01_0x02_ClientReady is the mirror image, sent by the client once
// its own login burst is complete.
type SNAC_0x01_0x02_ClientReady struct {
	FoodGroupVersions []uint16
}

// SNAC_0x01_0x06_RateParamsQuery requests the server's rate limit classes;
// it carries no body.
type SNAC_0x01_0x06_RateParamsQuery struct{}

// SNAC_0x01_0x07_RateParamsReply lists every rate class and which
// (foodgroup, subgroup) pairs belong to it.
type SNAC_0x01_0x07_RateParamsReply struct {
	RateClasses []RateClass `icq:"count_prefix=uint16"`
	RateGroups  []RateGroupEntry
}

// RateGroupEntry maps a rate class ID to the food-group/subgroup pairs it
// governs.
type RateGroupEntry struct {
	ID    RateLimitClassID
	Pairs []FoodGroupPair `icq:"count_prefix=uint16"`
}

// FoodGroupPair identifies a single SNAC subtype by its food group.
type FoodGroupPair struct {
	FoodGroup uint16
	SubGroup  uint16
}

// SNAC_0x01_0x08_RateParamsSubAdd subscribes the client to rate-limit
// status change notifications for the listed classes.
type SNAC_0x01_0x08_RateParamsSubAdd struct {
	ClassIDs []RateLimitClassID
}

// SNAC_0x01_0x0E_PersonalInfoRequest requests the server push the
// client's own user-info block; no body.
type SNAC_0x01_0x0E_PersonalInfoRequest struct{}

// SNAC_0x01_0x0F_UserInfo carries a single user's info block (used both
// for the self-info push at login and for presence updates elsewhere).
type SNAC_0x01_0x0F_UserInfo struct {
	UserInfo UserInfoBlock
}

// UserInfoBlock is the common (screen-name, warning, TLV attributes)
// triple carried in several SNAC families.
type UserInfoBlock struct {
	ScreenName   string `icq:"len_prefix=uint8"`
	WarningLevel uint16
	TLVBlock
}

// UserInfo TLV tags (nested inside UserInfoBlock.TLVBlock).
const (
	UserInfoTLVClass        uint16 = 0x01
	UserInfoTLVSignonTime   uint16 = 0x03
	UserInfoTLVIdleTime     uint16 = 0x04
	UserInfoTLVCapabilities uint16 = 0x0D
	UserInfoTLVExternalIP   uint16 = 0x0A
	UserInfoTLVICQStatus    uint16 = 0x06
	UserInfoTLVShortCaps    uint16 = 0x19
)

// SNAC_0x01_0x10_EvilNotification reports that a remote user's warning
// level increased.
type SNAC_0x01_0x10_EvilNotification struct {
	NewEvil    uint16
	ScreenName string `icq:"len_prefix=uint8,optional"`
}

// SNAC_0x01_0x11_IdleNotification reports the client's idle duration in
// seconds (0 clears idle status).
type SNAC_0x01_0x11_IdleNotification struct {
	IdleTime uint32
}

// SNAC_0x01_0x13_MOTD carries a message-of-the-day the client ignores the
// content of but treats as "connection is up" (spec.md §4.6).
type SNAC_0x01_0x13_MOTD struct {
	Code uint16
	TLVRestBlock
}

// SNAC_0x01_0x1E_SetUserInfo pushes updated profile/status TLVs to the
// server.
type SNAC_0x01_0x1E_SetUserInfo struct {
	TLVRestBlock
}

// ICQ status bitmask values carried in UserInfoTLVICQStatus (spec.md §3).
const (
	ICQStatusOnline       uint32 = 0x00000000
	ICQStatusAway         uint32 = 0x00000001
	ICQStatusDND          uint32 = 0x00000002
	ICQStatusNA           uint32 = 0x00000004
	ICQStatusOccupied     uint32 = 0x00000010
	ICQStatusFreeForChat  uint32 = 0x00000020
	ICQStatusInvisible    uint32 = 0x00000100
)
