package client

import (
	"testing"

	"github.com/gooscar/icq2000/config"
	"github.com/gooscar/icq2000/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchServerList_ReplyAppliesItemsAndAcks(t *testing.T) {
	c, events, pipe := newTestClient(t, config.Config{UIN: 42})

	item := wire.FeedbagItem{Name: "100", GroupID: 1, ItemID: 5, ClassID: wire.FeedbagClassBuddy}
	item.Append(wire.NewTLV(wire.FeedbagAttrBuddyComment, []byte("Bob")))
	reply := wire.SNAC_0x0D_0x06_ServerListReply{Items: []wire.FeedbagItem{item}}

	require.NoError(t, c.dispatchServerList(wire.SNACFrame{SubGroup: wire.ServerListReply}, encodeBody(t, reply)))

	contact := c.contacts.GetOrCreate(100)
	assert.EqualValues(t, 1, contact.GroupID)
	assert.EqualValues(t, 5, contact.ItemID)
	assert.Equal(t, "Bob", contact.Alias)

	require.Len(t, *events, 1)
	assert.Equal(t, ContactListEvent{Kind: ContactServerBased}, (*events)[0])
	assert.Positive(t, pipe.Len()) // ServerListUse ack sent
}

func TestDispatchServerList_StatusEmitsAck(t *testing.T) {
	c, events, _ := newTestClient(t, config.Config{UIN: 42})

	status := wire.SNAC_0x0D_0x0E_ServerListStatus{Results: []uint16{wire.FeedbagResultSuccess}}
	require.NoError(t, c.dispatchServerList(wire.SNACFrame{SubGroup: wire.ServerListStatus}, encodeBody(t, status)))

	require.Len(t, *events, 1)
	assert.Equal(t, ServerListAckEvent{Results: []uint16{wire.FeedbagResultSuccess}}, (*events)[0])
}

func TestAddContact_BracketsEditInStartEndCluster(t *testing.T) {
	c, _, pipe := newTestClient(t, config.Config{UIN: 42})

	require.NoError(t, c.AddContact(100, 1, "Bob"))
	assert.Positive(t, pipe.Len())

	contact := c.contacts.GetOrCreate(100)
	assert.EqualValues(t, 1, contact.GroupID)
	assert.Equal(t, "Bob", contact.Alias)
	assert.NotZero(t, contact.ItemID)
}

func TestRemoveContact_UnknownContact_Errors(t *testing.T) {
	c, _, _ := newTestClient(t, config.Config{UIN: 42})
	require.Error(t, c.RemoveContact(999))
}
