// Package netio provides the thin non-blocking socket wrappers the
// client library reads and writes through. It owns no event loop: the
// embedder supplies socket readiness (spec.md §6, "Socket readiness
// notifier") and the library only ever consumes bytes already sitting
// in the kernel buffer, never blocking on I/O (spec.md §5).
package netio

import (
	"errors"
	"net"
	"os"
	"syscall"
	"time"
)

// Mode is a readiness condition an embedder's event loop can signal,
// mirroring the {Read,Write,Exception} set from spec.md §6.
type Mode int

const (
	ModeRead Mode = 1 << iota
	ModeWrite
	ModeException
)

// AddSocketHandleFunc registers fd with the embedder's event loop for
// the given readiness modes.
type AddSocketHandleFunc func(fd int, modes Mode)

// RemoveSocketHandleFunc deregisters fd from the embedder's event loop.
type RemoveSocketHandleFunc func(fd int)

// Socket wraps one net.Conn with deadline-based non-blocking reads and
// writes: every call sets a deadline one millisecond ahead and surfaces
// os.ErrDeadlineExceeded as ErrWouldBlock, so the library never waits
// longer than that inside a Read or Write call.
type Socket struct {
	conn net.Conn
	fd   int
}

// ErrWouldBlock is returned by Read/Write when no bytes were
// immediately available, matching POSIX EWOULDBLOCK semantics for a
// socket the embedder hasn't yet signalled ready.
var ErrWouldBlock = errors.New("netio: operation would block")

// NewSocket wraps an already-connected net.Conn. The embedder is
// responsible for establishing the connection (including detecting
// non-blocking connect completion, spec.md §5) and handing the result
// here; this library never dials.
func NewSocket(conn net.Conn) *Socket {
	return &Socket{conn: conn, fd: fileDescriptor(conn)}
}

// FD returns the underlying file descriptor, for registration with the
// embedder's AddSocketHandle/RemoveSocketHandle collaborator.
func (s *Socket) FD() int { return s.fd }

// Read consumes whatever is immediately available, returning
// ErrWouldBlock instead of waiting if nothing is.
func (s *Socket) Read(p []byte) (int, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return 0, err
	}
	n, err := s.conn.Read(p)
	if err != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		return n, ErrWouldBlock
	}
	return n, err
}

// Write sends whatever the kernel will immediately accept, returning
// ErrWouldBlock instead of waiting if the send buffer is full.
func (s *Socket) Write(p []byte) (int, error) {
	if err := s.conn.SetWriteDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return 0, err
	}
	n, err := s.conn.Write(p)
	if err != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		return n, ErrWouldBlock
	}
	return n, err
}

// Close releases the underlying connection.
func (s *Socket) Close() error { return s.conn.Close() }

// RemoteAddr exposes the peer address, used to validate direct-connect
// UIN confirmation (spec.md §4.7 step 5).
func (s *Socket) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

func fileDescriptor(conn net.Conn) int {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return -1
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return -1
	}
	var fd int
	_ = raw.Control(func(v uintptr) { fd = int(v) })
	return fd
}
