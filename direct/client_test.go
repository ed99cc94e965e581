package direct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitPacket_V6RoundTrip(t *testing.T) {
	in := InitPacket{
		StartByte:    0xFF,
		TCPVersion:   6,
		RemoteUIN:    123456,
		LocalUIN:     654321,
		ExternalIP:   0x0A000001,
		LANIP:        0xC0A80001,
		SessionID:    0xDEADBEEF,
	}
	b, err := EncodeInit(in)
	require.NoError(t, err)

	out, err := DecodeInit(b)
	require.NoError(t, err)
	assert.Nil(t, out.ExtraV7)
	assert.Equal(t, in.SessionID, out.SessionID)
	assert.Equal(t, in.RemoteUIN, out.RemoteUIN)
}

func TestInitPacket_V7RoundTrip(t *testing.T) {
	in := InitPacket{
		StartByte:  0xFF,
		TCPVersion: 7,
		RemoteUIN:  123456,
		SessionID:  42,
		ExtraV7:    &v7InitExtra{Value: 0x99},
	}
	b, err := EncodeInit(in)
	require.NoError(t, err)

	out, err := DecodeInit(b)
	require.NoError(t, err)
	require.NotNil(t, out.ExtraV7)
	assert.Equal(t, uint32(0x99), out.ExtraV7.Value)
}

func TestValidatePeerUIN_SameNAT(t *testing.T) {
	assert.True(t, ValidatePeerUIN(1, 1, 2, 2))
}

func TestValidatePeerUIN_DirectMatch(t *testing.T) {
	assert.True(t, ValidatePeerUIN(5, 1, 2, 5))
}

func TestValidatePeerUIN_Rejected(t *testing.T) {
	assert.False(t, ValidatePeerUIN(5, 1, 2, 3))
}

func TestDirectClient_QueuesUntilConnected(t *testing.T) {
	d := NewDirectClient(false)
	d.Enqueue([]byte("one"))
	d.Enqueue([]byte("two"))

	flushed := d.TransitionConnected()
	assert.Equal(t, [][]byte{[]byte("one"), []byte("two")}, flushed)
	assert.Equal(t, Connected, d.State)
}

func TestDirectClient_AckTracking(t *testing.T) {
	d := NewDirectClient(false)
	seq := d.NextSequence()
	d.TrackAck(seq, []byte("payload"))

	payload, ok := d.ResolveAck(seq)
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), payload)

	_, ok = d.ResolveAck(seq)
	assert.False(t, ok)
}
