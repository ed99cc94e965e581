package client

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/gooscar/icq2000/config"
	"github.com/gooscar/icq2000/state"
	"github.com/gooscar/icq2000/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a Client wired to an in-memory FLAP pipe instead
// of a real socket, and a slice capturing every emitted event -- enough
// to drive dispatch/messaging logic without netio.
func newTestClient(t *testing.T, cfg config.Config) (*Client, *[]Event, *bytes.Buffer) {
	t.Helper()
	var events []Event
	pipe := &bytes.Buffer{}
	c := NewClient(cfg, slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil)), func(ev Event) {
		events = append(events, ev)
	}, nil, nil)
	c.flap = wire.NewFlapClient(pipe, pipe)
	c.now = func() time.Time { return time.Unix(1000, 0) }
	return c, &events, pipe
}

func TestClient_SetStatus_BeforeLogin_RecordsIntentOnly(t *testing.T) {
	c, events, _ := newTestClient(t, config.Config{UIN: 42})
	require.NoError(t, c.SetStatus(state.StatusAway))
	assert.Equal(t, state.StatusAway, c.self.Status)
	assert.Empty(t, *events)
}

func TestClient_SetStatus_WhileLoggedIn_SendsAndEmits(t *testing.T) {
	c, events, pipe := newTestClient(t, config.Config{UIN: 42})
	c.state = state.BosLoggedIn

	require.NoError(t, c.SetStatus(state.StatusOccupied))
	assert.Equal(t, state.StatusOccupied, c.self.Status)
	require.Len(t, *events, 1)
	assert.Equal(t, MyStatusChangeEvent{Status: state.StatusOccupied}, (*events)[0])
	assert.Positive(t, pipe.Len())
}

func TestClient_Disconnect_EmitsOnceAndResetsState(t *testing.T) {
	c, events, _ := newTestClient(t, config.Config{UIN: 42})
	c.state = state.BosLoggedIn

	require.NoError(t, c.Disconnect(DisconnectRequested))
	assert.Equal(t, state.NotConnected, c.State())
	require.Len(t, *events, 1)
	assert.Equal(t, DisconnectedEvent{Reason: DisconnectRequested}, (*events)[0])

	// A second Disconnect on an already-torn-down client is a no-op.
	require.NoError(t, c.Disconnect(DisconnectRequested))
	assert.Len(t, *events, 1)
}

func TestClient_SocketReady_UnknownFD(t *testing.T) {
	c, _, _ := newTestClient(t, config.Config{UIN: 42})
	err := c.SocketReady(999, 0)
	assert.ErrorIs(t, err, ErrWrongSocket)
}

func TestMapLoginErrorCode(t *testing.T) {
	cases := map[uint16]DisconnectReason{
		0x05: DisconnectFailedBadUsername,
		0x04: DisconnectFailedBadPassword,
		0x18: DisconnectFailedBadPassword,
		0x1C: DisconnectFailedMismatchPasswd,
		0x1E: DisconnectFailedTurboing,
		0x17: DisconnectFailedDualLogin,
		0x99: DisconnectFailedUnknown,
	}
	for code, want := range cases {
		assert.Equal(t, want, mapLoginErrorCode(code))
	}
}
