package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gooscar/icq2000/client"
	"github.com/gooscar/icq2000/icbm"
	"github.com/gooscar/icq2000/state"
)

// runStdinCommands reads operator commands from stdin until ctx is
// cancelled: "msg <uin> <text>" sends a normal message, "status
// <name>" changes presence, "quit" requests shutdown by invoking stop,
// the same cancellation path SIGINT/SIGTERM drive -- so there is
// exactly one place that tears the client down (spec.md §5,
// "Cancellation").
func runStdinCommands(ctx context.Context, c *client.Client, deps Container, stop context.CancelFunc) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if line == "quit" {
				stop()
				continue
			}
			if err := dispatchCommand(c, line); err != nil {
				deps.logger.Warn("command failed", "line", line, "err", err.Error())
			}
		}
	}
}

func dispatchCommand(c *client.Client, line string) error {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(fields) == 0 || fields[0] == "" {
		return nil
	}
	switch fields[0] {
	case "msg":
		if len(fields) < 3 {
			return fmt.Errorf("usage: msg <uin> <text>")
		}
		uin, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return fmt.Errorf("bad uin %q: %w", fields[1], err)
		}
		return c.SendMessage(uint32(uin), icbm.NormalMessage{Text: fields[2]})
	case "status":
		if len(fields) < 2 {
			return fmt.Errorf("usage: status <online|away|dnd|occupied|na|ffc|invisible|offline>")
		}
		s, err := parseStatus(fields[1])
		if err != nil {
			return err
		}
		return c.SetStatus(s)
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func parseStatus(s string) (state.Status, error) {
	switch strings.ToLower(s) {
	case "online":
		return state.StatusOnline, nil
	case "away":
		return state.StatusAway, nil
	case "dnd":
		return state.StatusDND, nil
	case "occupied":
		return state.StatusOccupied, nil
	case "na":
		return state.StatusNotAvailable, nil
	case "ffc":
		return state.StatusFreeForChat, nil
	case "invisible":
		return state.StatusInvisible, nil
	case "offline":
		return state.StatusOffline, nil
	default:
		return 0, fmt.Errorf("unknown status %q", s)
	}
}
