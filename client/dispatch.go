package client

import (
	"bytes"
	"fmt"

	"github.com/gooscar/icq2000/icbm"
	"github.com/gooscar/icq2000/state"
	"github.com/gooscar/icq2000/wire"
)

// dispatchSNAC routes one inbound SNAC by (food group, subtype)
// (spec.md §4.3, §4.6). Unknown food groups are logged and dropped,
// matching the source's tolerant "preserve as opaque RawSNAC" policy --
// this client has no use for the raw bytes once unrecognized, so it
// only logs. Unknown subtypes within a handled food group are dropped
// without logging.
func (c *Client) dispatchSNAC(frame wire.SNACFrame, body *bytes.Buffer) error {
	switch frame.FoodGroup {
	case wire.General:
		return c.dispatchGeneral(frame, body)
	case wire.Buddy:
		return c.dispatchBuddy(frame, body)
	case wire.ICBM:
		return c.dispatchICBM(frame, body)
	case wire.ServerList:
		return c.dispatchServerList(frame, body)
	case wire.Server:
		return c.dispatchServer(frame, body)
	case wire.UINReg:
		return c.dispatchUINReg(frame, body)
	case wire.BOS:
		return nil // visible/invisible list ACKs carry no state this client tracks
	default:
		c.logEvent(LogWarn, fmt.Sprintf("dispatch: unhandled food group %s/0x%04x", wire.FoodGroupName(frame.FoodGroup), frame.SubGroup))
		return nil
	}
}

func (c *Client) dispatchGeneral(frame wire.SNACFrame, body *bytes.Buffer) error {
	switch frame.SubGroup {
	case wire.GeneralServerReady:
		var sr wire.SNAC_0x01_0x03_ServerReady
		_ = wire.Unmarshal(&sr, body)
		return c.runLoginBurst()
	case wire.GeneralRateParamsReply:
		var rp wire.SNAC_0x01_0x07_RateParamsReply
		if err := wire.Unmarshal(&rp, body); err != nil {
			return nil
		}
		for _, class := range rp.RateClasses {
			c.rateClasses[class.ID] = &rateClassTracker{class: class, status: wire.RateLimitStatusClear}
		}
		for _, group := range rp.RateGroups {
			for _, pair := range group.Pairs {
				c.rateClassByPair[pair] = group.ID
			}
		}
		ids := make([]wire.RateLimitClassID, 0, len(rp.RateClasses))
		for _, class := range rp.RateClasses {
			ids = append(ids, class.ID)
		}
		return c.sendSNAC(wire.General, wire.GeneralRateParamsAck, wire.SNAC_0x01_0x08_RateParamsSubAdd{ClassIDs: ids})
	case wire.GeneralUserInfo:
		var ui wire.SNAC_0x01_0x0F_UserInfo
		if err := wire.Unmarshal(&ui, body); err != nil {
			return nil
		}
		return c.handleSelfUserInfo(ui.UserInfo)
	case wire.GeneralMOTD:
		return nil // content ignored; connection treated as up (spec.md §4.6)
	case wire.GeneralEvilNotify, wire.GeneralIdleNotify:
		return nil
	default:
		return nil
	}
}

func (c *Client) handleSelfUserInfo(info wire.UserInfoBlock) error {
	changed := false
	if ip, ok := info.Uint32BE(wire.UserInfoTLVExternalIP); ok && ip != c.self.ExternalIP {
		c.self.ExternalIP = ip
		changed = true
	}
	if bits, ok := info.Uint32BE(wire.UserInfoTLVICQStatus); ok {
		newStatus := state.StatusFromWire(bits)
		if newStatus != c.self.Status {
			c.self.Status = newStatus
			c.emit(MyStatusChangeEvent{Status: newStatus})
		}
	}
	if changed {
		c.emit(MyUserInfoChangeEvent{ExternalIP: c.self.ExternalIP})
	}
	return nil
}

// runLoginBurst performs the fixed sequence of post-ServerReady SNACs
// (spec.md §4.6/§4.8): capabilities, rate-info query, personal-info
// request, add-ICBM-parameter, set-user-info, buddy list request, set
// status, client-ready, offline-messages request -- then transitions to
// BosLoggedIn and emits Connected exactly once.
func (c *Client) runLoginBurst() error {
	c.state = state.BosLoggingIn

	caps := wire.TLVRestBlock{}
	caps.Append(wire.NewTLV(0x05, wire.DefaultICQ2002Capabilities.Bytes()))
	if err := c.sendSNAC(wire.Location, wire.LocationSetInfo, caps); err != nil {
		return err
	}
	if err := c.sendSNAC(wire.General, wire.GeneralRateParamsQuery, wire.SNAC_0x01_0x06_RateParamsQuery{}); err != nil {
		return err
	}
	if err := c.sendSNAC(wire.General, wire.GeneralPersonalInfoReq, wire.SNAC_0x01_0x0E_PersonalInfoRequest{}); err != nil {
		return err
	}
	if err := c.sendSNAC(wire.ICBM, wire.ICBMAddParams, icbmParams()); err != nil {
		return err
	}
	statusTLVs := wire.TLVRestBlock{}
	statusTLVs.Append(wire.NewTLV(wire.UserInfoTLVICQStatus, c.self.Status.ToWireStatus()))
	if err := c.sendSNAC(wire.General, wire.GeneralSetUserInfo, wire.SNAC_0x01_0x1E_SetUserInfo{TLVRestBlock: statusTLVs}); err != nil {
		return err
	}
	if err := c.sendSNAC(wire.ServerList, wire.ServerListQuery, wire.SNAC_0x0D_0x04_ServerListQuery{}); err != nil {
		return err
	}
	if err := c.sendSNAC(wire.General, wire.GeneralClientReady, wire.SNAC_0x01_0x02_ClientReady{FoodGroupVersions: loginFoodGroupVersions()}); err != nil {
		return err
	}
	if err := c.sendSNAC(wire.Server, wire.ServerMetaRequest, icqOfflineMessageRequest()); err != nil {
		return err
	}

	c.state = state.BosLoggedIn
	c.emit(ConnectedEvent{})
	return nil
}

func loginFoodGroupVersions() []uint16 {
	return []uint16{wire.General, 3, wire.Location, 1, wire.Buddy, 1, wire.ICBM, 1, wire.BOS, 1, wire.ServerList, 4, wire.Server, 1}
}

// icbmParams mirrors the source's fixed ICBM-parameter block (message
// flags permitted, max message/sender-warning levels) -- values are the
// legacy client's documented constants, not server-negotiated.
func icbmParams() any {
	type params struct {
		Channel      uint16
		Flags        uint32
		MaxMsgLen    uint16
		MaxSenderWl  uint16
		MaxReceiveWl uint16
		MinMsgInt    uint16
	}
	return params{Channel: 1, Flags: 0x0000000B, MaxMsgLen: 8000, MaxSenderWl: 999, MaxReceiveWl: 999}
}

func icqOfflineMessageRequest() any {
	type req struct {
		ReqType uint16
	}
	return req{ReqType: 0x003C} // fetch-offline-messages request code
}

func (c *Client) dispatchBuddy(frame wire.SNACFrame, body *bytes.Buffer) error {
	switch frame.SubGroup {
	case wire.BuddyArrived:
		var ui wire.SNAC_0x01_0x0F_UserInfo
		if err := wire.Unmarshal(&ui, body); err != nil {
			return nil
		}
		return c.handleBuddyArrived(ui.UserInfo)
	case wire.BuddyDeparted:
		var ui wire.SNAC_0x01_0x0F_UserInfo
		if err := wire.Unmarshal(&ui, body); err != nil {
			return nil
		}
		uin := screenNameToUIN(ui.UserInfo.ScreenName)
		contact := c.contacts.GetOrCreate(uin)
		contact.Status = state.StatusOffline
		c.emit(ContactListEvent{Kind: ContactStatusChange, UIN: uin})
		return nil
	default:
		return nil
	}
}

func (c *Client) handleBuddyArrived(info wire.UserInfoBlock) error {
	uin := screenNameToUIN(info.ScreenName)
	contact := c.contacts.GetOrCreate(uin)
	if bits, ok := info.Uint32BE(wire.UserInfoTLVICQStatus); ok {
		contact.Status = state.StatusFromWire(bits)
	} else {
		contact.Status = state.StatusOnline
	}
	if ip, ok := info.Uint32BE(wire.UserInfoTLVExternalIP); ok {
		contact.ExternalIP = ip
	}
	if raw, ok := info.Slice(wire.UserInfoTLVCapabilities); ok {
		contact.Capabilities = wire.ParseCapabilityList(raw)
	}
	c.emit(ContactListEvent{Kind: ContactStatusChange, UIN: uin})
	return nil
}

func screenNameToUIN(screenName string) uint32 {
	var uin uint32
	_, _ = fmt.Sscanf(screenName, "%d", &uin)
	return uin
}

// dispatchServerList handles the Server-list/Feedbag food group
// (spec.md §4.6): the full-list snapshot at login, and the ack carrying
// per-item result codes for a previously sent insert/update/delete.
func (c *Client) dispatchServerList(frame wire.SNACFrame, body *bytes.Buffer) error {
	switch frame.SubGroup {
	case wire.ServerListReply:
		var reply wire.SNAC_0x0D_0x06_ServerListReply
		if err := wire.Unmarshal(&reply, body); err != nil {
			return nil
		}
		for _, item := range reply.Items {
			c.applyFeedbagItem(item)
		}
		if err := c.sendSNAC(wire.ServerList, wire.ServerListUse, wire.SNAC_0x0D_0x07_ServerListUse{}); err != nil {
			return err
		}
		c.emit(ContactListEvent{Kind: ContactServerBased})
		return nil
	case wire.ServerListStatus:
		var status wire.SNAC_0x0D_0x0E_ServerListStatus
		if err := wire.Unmarshal(&status, body); err != nil {
			return nil
		}
		c.emit(ServerListAckEvent{Results: status.Results})
		return nil
	default:
		return nil
	}
}

// applyFeedbagItem folds one inbound feedbag entry into the contact
// list. Only buddy-class items name a contact; group items and the
// permit/deny classes carry no per-contact state this client tracks.
func (c *Client) applyFeedbagItem(item wire.FeedbagItem) {
	if item.ClassID != wire.FeedbagClassBuddy {
		return
	}
	uin := screenNameToUIN(item.Name)
	if uin == 0 {
		return
	}
	contact := c.contacts.GetOrCreate(uin)
	contact.GroupID = item.GroupID
	contact.ItemID = item.ItemID
	contact.AuthRequired = item.AwaitingAuth()
	if alias, ok := item.String(wire.FeedbagAttrBuddyComment); ok {
		contact.Alias = alias
	}
}

func (c *Client) dispatchUINReg(frame wire.SNACFrame, body *bytes.Buffer) error {
	if frame.SubGroup != wire.UINRegReply {
		return nil
	}
	var reply struct{ UIN uint32 }
	if err := wire.Unmarshal(&reply, body); err != nil {
		return nil
	}
	c.emit(NewUINEvent{UIN: reply.UIN})
	return nil
}

func (c *Client) dispatchServer(frame wire.SNACFrame, body *bytes.Buffer) error {
	if frame.SubGroup != wire.ServerMetaResponse {
		return nil
	}
	var hdr struct {
		RespType uint16
	}
	if err := wire.Unmarshal(&hdr, body); err != nil {
		return nil
	}
	switch hdr.RespType {
	case wire.SrvResponseSMSMessage:
		msg, err := icbm.ParseSMSMessageXML(body.Bytes())
		if err != nil {
			c.logEvent(LogWarn, fmt.Sprintf("malformed SMS message: %s", err))
			return nil
		}
		c.emit(SMSMessageEvent{SMSMessage: msg})
		return nil
	case wire.SrvResponseSMSReceiptXML:
		receipt, err := icbm.ParseSMSReceiptXML(body.Bytes())
		if err != nil {
			c.logEvent(LogWarn, fmt.Sprintf("malformed SMS receipt: %s", err))
			return nil
		}
		c.emit(SMSReceiptEvent{SMSReceipt: receipt})
		return nil
	case wire.SrvResponseSearchResult:
		c.emit(SearchResultEvent{More: true})
		return nil
	case wire.SrvResponseSearchEnd:
		c.emit(SearchResultEvent{More: false})
		return nil
	default:
		return nil
	}
}
