package netio

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialLoopback(t *testing.T) (client, server net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	acceptCh := make(chan net.Conn, 1)
	go func() {
		conn, _ := ln.Accept()
		acceptCh <- conn
	}()

	client, err = net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	server = <-acceptCh
	require.NotNil(t, server)
	return client, server
}

func TestSocket_Read_WouldBlockWithNoData(t *testing.T) {
	client, server := dialLoopback(t)
	defer client.Close()
	defer server.Close()

	sock := NewSocket(client)
	buf := make([]byte, 16)
	_, err := sock.Read(buf)
	assert.ErrorIs(t, err, ErrWouldBlock)
}

func TestSocket_Read_ReturnsAvailableData(t *testing.T) {
	client, server := dialLoopback(t)
	defer client.Close()
	defer server.Close()

	_, err := server.Write([]byte("hello"))
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	sock := NewSocket(client)
	buf := make([]byte, 16)
	n, err := sock.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestSocket_Write_Succeeds(t *testing.T) {
	client, server := dialLoopback(t)
	defer client.Close()
	defer server.Close()

	sock := NewSocket(client)
	n, err := sock.Write([]byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestSocket_FD_NonNegativeForRealConn(t *testing.T) {
	client, server := dialLoopback(t)
	defer client.Close()
	defer server.Close()

	sock := NewSocket(client)
	assert.GreaterOrEqual(t, sock.FD(), 0)
}

func TestListener_Accept_WouldBlockWithNoPendingConn(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, err = ln.Accept()
	assert.ErrorIs(t, err, ErrWouldBlock)
}

func TestListener_Accept_ReturnsPendingConn(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		conn, err := net.Dial("tcp", ln.Addr().String())
		require.NoError(t, err)
		defer conn.Close()
		close(done)
	}()
	<-done
	time.Sleep(10 * time.Millisecond)

	sock, err := ln.Accept()
	require.NoError(t, err)
	defer sock.Close()
}
