// Package device talks to a microcontroller over a serial line. Commands
// and replies are single newline-terminated lines.
package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/0xcro3dile/eley-go/internal/domain/entities"
)

// ErrNoReply means the device did not answer before the read timeout.
var ErrNoReply = errors.New("device did not reply")

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// Controller implements ports.DeviceController over any byte stream.
type Controller struct {
	mu      sync.Mutex
	port    io.ReadWriteCloser
	reader  *bufio.Reader
	timeout time.Duration
}

// NewController wraps an open port. Replies slower than timeout fail with
// ErrNoReply when the port supports read deadlines.
func NewController(port io.ReadWriteCloser, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &Controller{port: port, reader: bufio.NewReader(port), timeout: timeout}
}

// Open opens the serial device at path, puts it in raw mode at baud and
// waits settle for the board to reset.
func Open(ctx context.Context, path string, baud int, timeout, settle time.Duration) (*Controller, error) {
	f, err := os.OpenFile(path, os.O_RDWR|syscall.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := configure(f, baud); err != nil {
		f.Close()
		return nil, fmt.Errorf("configuring %s: %w", path, err)
	}

	if settle > 0 {
		timer := time.NewTimer(settle)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			f.Close()
			return nil, ctx.Err()
		}
	}
	return NewController(f, timeout), nil
}

// Send writes the command line and returns the device's reply line.
func (c *Controller) Send(ctx context.Context, command entities.DeviceCommand) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := io.WriteString(c.port, string(command)+"\n"); err != nil {
		return "", fmt.Errorf("writing %s: %w", command, err)
	}

	if d, ok := c.port.(readDeadliner); ok {
		deadline := time.Now().Add(c.timeout)
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}
		if err := d.SetReadDeadline(deadline); err == nil {
			defer d.SetReadDeadline(time.Time{})
		}
	}

	line, err := c.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return "", ErrNoReply
		}
		if !errors.Is(err, io.EOF) || line == "" {
			return "", fmt.Errorf("reading reply: %w", err)
		}
	}
	return strings.TrimSpace(line), nil
}

// Close closes the port.
func (c *Controller) Close() error {
	return c.port.Close()
}
