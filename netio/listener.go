package netio

import (
	"errors"
	"net"
	"os"
	"time"
)

// Listener wraps a net.Listener with a non-blocking Accept, used when
// accept-in-direct is enabled (spec.md §6 configuration table) to take
// peer-to-peer direct connections.
type Listener struct {
	ln net.Listener
	fd int
}

// Listen opens a TCP listening socket on addr (empty host binds all
// interfaces).
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	fd := -1
	if tl, ok := ln.(*net.TCPListener); ok {
		fd = fileDescriptorListener(tl)
	}
	return &Listener{ln: ln, fd: fd}, nil
}

// FD returns the listening socket's file descriptor for
// AddSocketHandle/RemoveSocketHandle registration.
func (l *Listener) FD() int { return l.fd }

// Addr returns the listener's bound address, for an embedder that
// opened Listen(":0") and needs to learn the assigned port.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Accept returns a newly connected peer socket without blocking,
// reporting ErrWouldBlock if none is pending.
func (l *Listener) Accept() (*Socket, error) {
	type deadliner interface {
		SetDeadline(time.Time) error
	}
	if d, ok := l.ln.(deadliner); ok {
		_ = d.SetDeadline(time.Now().Add(time.Millisecond))
	}
	conn, err := l.ln.Accept()
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, ErrWouldBlock
		}
		return nil, err
	}
	return NewSocket(conn), nil
}

// Close stops listening.
func (l *Listener) Close() error { return l.ln.Close() }

func fileDescriptorListener(tl *net.TCPListener) int {
	sc, err := tl.SyscallConn()
	if err != nil {
		return -1
	}
	var fd int
	_ = sc.Control(func(v uintptr) { fd = int(v) })
	return fd
}
