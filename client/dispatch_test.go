package client

import (
	"bytes"
	"testing"

	"github.com/gooscar/icq2000/config"
	"github.com/gooscar/icq2000/state"
	"github.com/gooscar/icq2000/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, wire.Marshal(v, buf))
	return buf
}

func TestDispatchGeneral_RateParamsReply_PopulatesClasses(t *testing.T) {
	c, _, _ := newTestClient(t, config.Config{UIN: 42})

	reply := wire.SNAC_0x01_0x07_RateParamsReply{
		RateClasses: []wire.RateClass{{ID: 1, WindowSize: 20, ClearLevel: 2500, AlertLevel: 2000, LimitLevel: 1500, DisconnectLevel: 800, MaxLevel: 6000}},
		RateGroups: []wire.RateGroupEntry{{
			ID:    1,
			Pairs: []wire.FoodGroupPair{{FoodGroup: wire.ICBM, SubGroup: wire.ICBMChannelMsgToHost}},
		}},
	}
	body := encodeBody(t, reply)
	require.NoError(t, c.dispatchGeneral(wire.SNACFrame{SubGroup: wire.GeneralRateParamsReply}, body))

	assert.Contains(t, c.rateClasses, wire.RateLimitClassID(1))
	assert.Equal(t, wire.RateLimitClassID(1), c.rateClassByPair[wire.FoodGroupPair{FoodGroup: wire.ICBM, SubGroup: wire.ICBMChannelMsgToHost}])
}

func TestDispatchBuddy_ArrivedAndDeparted(t *testing.T) {
	c, events, _ := newTestClient(t, config.Config{UIN: 42})

	arrived := wire.SNAC_0x01_0x0F_UserInfo{UserInfo: wire.UserInfoBlock{ScreenName: "100"}}
	arrived.UserInfo.TLVBlock.Append(wire.NewTLVBE(wire.UserInfoTLVICQStatus, wire.ICQStatusAway))
	require.NoError(t, c.dispatchBuddy(wire.SNACFrame{SubGroup: wire.BuddyArrived}, encodeBody(t, arrived)))

	contact := c.contacts.GetOrCreate(100)
	assert.Equal(t, state.StatusAway, contact.Status)
	require.NotEmpty(t, *events)

	departed := wire.SNAC_0x01_0x0F_UserInfo{UserInfo: wire.UserInfoBlock{ScreenName: "100"}}
	require.NoError(t, c.dispatchBuddy(wire.SNACFrame{SubGroup: wire.BuddyDeparted}, encodeBody(t, departed)))
	assert.Equal(t, state.StatusOffline, c.contacts.GetOrCreate(100).Status)
}

func TestScreenNameToUIN(t *testing.T) {
	assert.Equal(t, uint32(123456), screenNameToUIN("123456"))
	assert.Equal(t, uint32(0), screenNameToUIN("not-a-number"))
}

func TestDispatchServer_SMSMessage(t *testing.T) {
	c, events, _ := newTestClient(t, config.Config{UIN: 42})

	xmlBody := []byte(`<sms_message><source>web</source><sender>+1555</sender><text>hi</text><senders_network>T-Mobile</senders_network></sms_message>`)
	buf := &bytes.Buffer{}
	require.NoError(t, wire.Marshal(struct{ RespType uint16 }{RespType: wire.SrvResponseSMSMessage}, buf))
	buf.Write(xmlBody)

	require.NoError(t, c.dispatchServer(wire.SNACFrame{SubGroup: wire.ServerMetaResponse}, buf))
	require.Len(t, *events, 1)
	got, ok := (*events)[0].(SMSMessageEvent)
	require.True(t, ok)
	assert.Equal(t, "hi", got.Text)
}
