package client

import (
	"fmt"

	"github.com/gooscar/icq2000/wire"
)

// AddContact inserts a new buddy entry on the server-stored contact
// list (spec.md §4.6, "receive list items ... edit start/add/remove
// /update-group/edit-finish"). The edit is bracketed in a start/end
// cluster per the protocol's atomic-batch convention; the server's
// per-item result code arrives later as a ServerListAckEvent.
func (c *Client) AddContact(uin uint32, groupID uint16, nick string) error {
	item := wire.FeedbagItem{
		Name:    fmt.Sprintf("%d", uin),
		GroupID: groupID,
		ItemID:  c.nextItemIDValue(),
		ClassID: wire.FeedbagClassBuddy,
	}
	if nick != "" {
		item.Append(wire.NewTLV(wire.FeedbagAttrBuddyComment, []byte(nick)))
	}
	contact := c.contacts.GetOrCreate(uin)
	contact.GroupID = groupID
	contact.ItemID = item.ItemID
	if nick != "" {
		contact.Alias = nick
	}
	return c.editFeedbagItems(wire.ServerListInsertItem, wire.SNAC_0x0D_0x08_ServerListInsertItem{Items: []wire.FeedbagItem{item}})
}

// UpdateContact edits a contact's existing feedbag entry in place
// (matched by its GroupID/ItemID).
func (c *Client) UpdateContact(uin uint32, nick string) error {
	contact, ok := c.contacts.Get(uin)
	if !ok {
		return fmt.Errorf("client: unknown contact %d", uin)
	}
	item := wire.FeedbagItem{
		Name:    fmt.Sprintf("%d", uin),
		GroupID: contact.GroupID,
		ItemID:  contact.ItemID,
		ClassID: wire.FeedbagClassBuddy,
	}
	if nick != "" {
		item.Append(wire.NewTLV(wire.FeedbagAttrBuddyComment, []byte(nick)))
		contact.Alias = nick
	}
	return c.editFeedbagItems(wire.ServerListUpdateItem, wire.SNAC_0x0D_0x09_ServerListUpdateItem{Items: []wire.FeedbagItem{item}})
}

// RemoveContact deletes a contact's feedbag entry from the server list.
func (c *Client) RemoveContact(uin uint32) error {
	contact, ok := c.contacts.Get(uin)
	if !ok {
		return fmt.Errorf("client: unknown contact %d", uin)
	}
	item := wire.FeedbagItem{
		Name:    fmt.Sprintf("%d", uin),
		GroupID: contact.GroupID,
		ItemID:  contact.ItemID,
		ClassID: wire.FeedbagClassBuddy,
	}
	if err := c.editFeedbagItems(wire.ServerListDeleteItem, wire.SNAC_0x0D_0x0A_ServerListDeleteItem{Items: []wire.FeedbagItem{item}}); err != nil {
		return err
	}
	c.contacts.Remove(uin)
	return nil
}

// editFeedbagItems brackets a single insert/update/delete SNAC in a
// start/end cluster pair, per spec.md §4.6.
func (c *Client) editFeedbagItems(subGroup uint16, body any) error {
	if err := c.sendSNAC(wire.ServerList, wire.ServerListStartCluster, wire.SNAC_0x0D_0x11_ServerListStartCluster{}); err != nil {
		return err
	}
	if err := c.sendSNAC(wire.ServerList, subGroup, body); err != nil {
		return err
	}
	return c.sendSNAC(wire.ServerList, wire.ServerListEndCluster, wire.SNAC_0x0D_0x12_ServerListEndCluster{})
}

func (c *Client) nextItemIDValue() uint16 {
	c.nextItemID++
	return c.nextItemID
}
