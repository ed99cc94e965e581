package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/gooscar/icq2000/client"
	"github.com/gooscar/icq2000/netio"
	"github.com/gooscar/icq2000/state"
)

// dialTimeout bounds every outbound TCP dial the demo makes on the
// client's behalf -- the library itself never dials (spec.md §5), so
// this embedder supplies connection establishment the simplest way a
// single-goroutine demo can afford: a blocking dial, with the result
// immediately wrapped in a non-blocking netio.Socket and handed over.
const dialTimeout = 10 * time.Second

// pollInterval is how often the demo re-checks socket readiness and
// calls Client.Poll. A real embedder would instead drive this from an
// OS readiness notifier (epoll/kqueue/select); busy-polling a fixed
// interval is the simplest faithful stand-in for one (spec.md §6,
// "Socket readiness notifier").
const pollInterval = 50 * time.Millisecond

// socketSet tracks the file descriptors the AddSocketHandleFunc and
// RemoveSocketHandleFunc the demo hands to client.NewClient register,
// since this demo has no real OS event loop of its own to hand them to.
type socketSet struct {
	modes map[int]netio.Mode
}

func newSocketSet() *socketSet { return &socketSet{modes: make(map[int]netio.Mode)} }

func (s *socketSet) add(fd int, mode netio.Mode) { s.modes[fd] = mode }
func (s *socketSet) remove(fd int)               { delete(s.modes, fd) }

// runClient drives the login handshake and the poll/dispatch loop
// until ctx is cancelled, then disconnects gracefully (spec.md §4.8,
// §5, "Cancellation").
func runClient(ctx context.Context, c *client.Client, deps Container, sockets *socketSet) error {
	sock, err := dialAuth(deps)
	if err != nil {
		return fmt.Errorf("dial auth host: %w", err)
	}
	if err := c.Connect(sock); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	if err := c.EnableDirectListener(); err != nil {
		deps.logger.Warn("direct listener unavailable", "err", err.Error())
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	bosDialed := false
	for {
		select {
		case <-ctx.Done():
			return c.Disconnect(client.DisconnectRequested)
		case <-ticker.C:
			c.Poll()
			for fd := range sockets.modes {
				if err := c.SocketReady(fd, netio.ModeRead); err != nil {
					deps.logger.Debug("socket ready returned", "fd", fd, "err", err.Error())
				}
			}
			if !bosDialed && c.State() == state.AuthRedirecting {
				bosDialed = true
				if err := dialAndConnectBOS(c, deps); err != nil {
					return fmt.Errorf("connect bos: %w", err)
				}
			}
			if c.State() == state.NotConnected {
				return fmt.Errorf("disconnected before shutdown was requested")
			}
		}
	}
}

// dialAuth connects to the authorizer host. Client.Connect registers
// the resulting socket with the demo's AddSocketHandleFunc itself, so
// the caller doesn't need to.
func dialAuth(deps Container) (*netio.Socket, error) {
	addr := net.JoinHostPort(deps.cfg.AuthHost, deps.cfg.AuthPort)
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, err
	}
	return netio.NewSocket(conn), nil
}

func dialAndConnectBOS(c *client.Client, deps Container) error {
	hostport, ok := c.PendingBOSRedirect()
	if !ok {
		return fmt.Errorf("no pending BOS redirect")
	}
	conn, err := net.DialTimeout("tcp", hostport, dialTimeout)
	if err != nil {
		return err
	}
	return c.ConnectBOS(netio.NewSocket(conn))
}
