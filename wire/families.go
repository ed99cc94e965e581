package wire

// SNAC food groups used by this client (spec.md §2, §4.6).
const (
	General    uint16 = 0x0001 // OSCAR calls this OService
	Location   uint16 = 0x0002
	Buddy      uint16 = 0x0003
	ICBM       uint16 = 0x0004 // Message
	BOS        uint16 = 0x0009
	ServerList uint16 = 0x000D // Feedbag
	Server     uint16 = 0x000F // ICQ-specific carrier
	UINReg     uint16 = 0x0011 // BUCP, new-account creation
)

// General (food group 1) subtypes.
const (
	GeneralErr             uint16 = 0x0001
	GeneralClientReady     uint16 = 0x0002
	GeneralServerReady     uint16 = 0x0003
	GeneralServiceRequest  uint16 = 0x0004
	GeneralRedirect        uint16 = 0x0005
	GeneralRateParamsQuery uint16 = 0x0006
	GeneralRateParamsReply uint16 = 0x0007
	GeneralRateParamsSub   uint16 = 0x0008
	GeneralRateParamsAck   uint16 = 0x000A
	GeneralPersonalInfoReq uint16 = 0x000E
	GeneralUserInfo        uint16 = 0x000F
	GeneralEvilNotify      uint16 = 0x0010
	GeneralIdleNotify      uint16 = 0x0011
	GeneralMOTD            uint16 = 0x0013
	GeneralSetUserInfo     uint16 = 0x001E
)

// Location (food group 2) subtypes.
const (
	LocationErr      uint16 = 0x0001
	LocationSetInfo  uint16 = 0x0004
	LocationSetDir   uint16 = 0x0009
)

// Buddy (food group 3) subtypes.
const (
	BuddyErr           uint16 = 0x0001
	BuddyRightsQuery   uint16 = 0x0002
	BuddyRightsReply   uint16 = 0x0003
	BuddyAddBuddy      uint16 = 0x0004
	BuddyRemoveBuddy   uint16 = 0x0005
	BuddyArrived       uint16 = 0x000B
	BuddyDeparted      uint16 = 0x000C
)

// ICBM (food group 4) subtypes.
const (
	ICBMErr              uint16 = 0x0001
	ICBMAddParams        uint16 = 0x0002
	ICBMParamsQuery      uint16 = 0x0004
	ICBMParamsReply      uint16 = 0x0005
	ICBMChannelMsgToHost uint16 = 0x0006
	ICBMChannelMsgToClient uint16 = 0x0007
	ICBMEvilRequest      uint16 = 0x0008
	ICBMEvilReply        uint16 = 0x0009
	ICBMMissedCalls      uint16 = 0x000A
	ICBMClientErr        uint16 = 0x000B
	ICBMHostAck          uint16 = 0x000C
)

// BOS (food group 9) subtypes.
const (
	BOSErr           uint16 = 0x0001
	BOSRightsQuery   uint16 = 0x0002
	BOSRightsReply   uint16 = 0x0003
	BOSSetGroupPerm  uint16 = 0x0004
	BOSAddVisible    uint16 = 0x0005
	BOSDelVisible    uint16 = 0x0006
	BOSAddInvisible  uint16 = 0x0007
	BOSDelInvisible  uint16 = 0x0008
)

// ServerList (Feedbag, food group 13) subtypes.
const (
	ServerListErr           uint16 = 0x0001
	ServerListRightsQuery   uint16 = 0x0002
	ServerListRightsReply   uint16 = 0x0003
	ServerListQuery         uint16 = 0x0004
	ServerListReply         uint16 = 0x0006
	ServerListUse           uint16 = 0x0007
	ServerListInsertItem    uint16 = 0x0008
	ServerListUpdateItem    uint16 = 0x0009
	ServerListDeleteItem    uint16 = 0x000A
	ServerListStatus        uint16 = 0x000E
	ServerListStartCluster  uint16 = 0x0011
	ServerListEndCluster    uint16 = 0x0012
)

// Server (food group 15, ICQ-specific carrier) subtypes. The client tags
// every request with a request-id and matches the response sub-type below
// (spec.md §4.6, "every such exchange is identified by request-id").
const (
	ServerErr          uint16 = 0x0001
	ServerMetaRequest  uint16 = 0x0002
	ServerMetaResponse uint16 = 0x0003
)

// SrvResponse sub-type codes nested inside a ServerMetaResponse payload,
// naming the ICQ-specific response kind (offline messages, SMS, search,
// simple/full user info).
const (
	SrvResponseOfflineMessage   uint16 = 0x0041
	SrvResponseOfflineMessageEnd uint16 = 0x0042
	SrvResponseSMSMessage       uint16 = 0x011C
	SrvResponseSMSSent          uint16 = 0x011A
	SrvResponseSMSError         uint16 = 0x011B
	SrvResponseSMSReceipt       uint16 = 0x01AA // raw marker; see SrvResponseSMSReceiptXML for the 2010 XML flavor
	SrvResponseSMSReceiptXML    uint16 = 2010
	SrvResponseSearchResult     uint16 = 0x00A0
	SrvResponseSearchEnd        uint16 = 0x00A1
	SrvResponseUserInfoShort    uint16 = 0x00C8
	SrvResponseUserInfoFull     uint16 = 0x00FA
)

// UINReg (BUCP, food group 17) subtypes.
const (
	UINRegErr     uint16 = 0x0001
	UINRegRequest uint16 = 0x0002
	UINRegReply   uint16 = 0x0003
)

// General error codes, shared across families (spec.md §4.6, §7).
const (
	ErrorCodeInvalidSnac        uint16 = 0x01
	ErrorCodeRateToHost         uint16 = 0x02
	ErrorCodeNotLoggedOn        uint16 = 0x04
	ErrorCodeServiceUnavailable uint16 = 0x05
	ErrorCodeInLocalPermitDeny  uint16 = 0x10
)

// Login TLV tags carried in the channel-1 signon body (spec.md §6).
const (
	LoginTLVScreenName   uint16 = 0x01
	LoginTLVRoastedPass  uint16 = 0x02
	LoginTLVClientProfile uint16 = 0x03
	LoginTLVCountry      uint16 = 0x0E
	LoginTLVLanguage     uint16 = 0x0F
	LoginTLVClientBuild  uint16 = 0x14
	LoginTLVClientType   uint16 = 0x15
	LoginTLVClientVersion uint16 = 0x17
	LoginTLVICQNumber    uint16 = 0x1A
)

// Channel-4 (signoff) disconnect TLV tags (spec.md §6).
const (
	SignoffTLVRedirect           uint16 = 0x05
	SignoffTLVCookie             uint16 = 0x06
	SignoffTLVErrorCode          uint16 = 0x08
	SignoffTLVDisconnectReason   uint16 = 0x09
	SignoffTLVDisconnectMessage  uint16 = 0x0B
)

// FoodGroupName returns a human-readable name for a food group, for
// logging. Unknown groups are rendered numerically.
func FoodGroupName(fg uint16) string {
	switch fg {
	case General:
		return "General"
	case Location:
		return "Location"
	case Buddy:
		return "Buddy"
	case ICBM:
		return "ICBM"
	case BOS:
		return "BOS"
	case ServerList:
		return "ServerList"
	case Server:
		return "Server"
	case UINReg:
		return "UINReg"
	default:
		return "Unknown"
	}
}
