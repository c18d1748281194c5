package wire

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"
)

// Conn wires a single TCP socket to an inverter/datalogger to a pair of Go
// channels: Incoming yields every packet the socket produces, and Send
// queues outbound packets for the writer goroutine. Modelled on the
// reader/writer/fan-out split a Modbus-TCP connection uses, generalised
// from fixed-size ADUs to this protocol's length-prefixed frames.
type Conn struct {
	conn net.Conn
	log  *slog.Logger

	Incoming chan Packet
	Send     chan Packet

	readTimeout time.Duration
}

// NewConn wraps conn. readTimeout bounds how long a single frame read may
// block; zero disables the deadline.
func NewConn(conn net.Conn, log *slog.Logger, readTimeout time.Duration) *Conn {
	return &Conn{
		conn:        conn,
		log:         log,
		Incoming:    make(chan Packet, 16),
		Send:        make(chan Packet, 16),
		readTimeout: readTimeout,
	}
}

// Run drives the connection until ctx is cancelled or either direction
// errors, closing the underlying socket on the way out. Callers should
// treat a non-nil, non-context.Canceled return as a reason to reconnect.
func (c *Conn) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer c.conn.Close()
		return c.readLoop(ctx)
	})

	g.Go(func() error {
		return c.writeLoop(ctx)
	})

	err := g.Wait()
	close(c.Incoming)
	return err
}

func (c *Conn) readLoop(ctx context.Context) error {
	r := bufio.NewReader(c.conn)
	header := make([]byte, 6)

	for {
		if c.readTimeout > 0 {
			c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		}

		if _, err := io.ReadFull(r, header); err != nil {
			return fmt.Errorf("wire: reading frame header: %w", err)
		}
		if header[0] != magic[0] || header[1] != magic[1] {
			return fmt.Errorf("wire: %w", ErrBadMagic)
		}

		declared := binary.LittleEndian.Uint16(header[4:6])
		rest := make([]byte, declared)
		if _, err := io.ReadFull(r, rest); err != nil {
			return fmt.Errorf("wire: reading frame body: %w", err)
		}

		frame := append(header, rest...)
		pkt, err := Parse(frame)
		if err != nil {
			c.log.Warn("dropping unparseable frame", "error", err)
			continue
		}

		select {
		case c.Incoming <- pkt:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Conn) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pkt, ok := <-c.Send:
			if !ok {
				return nil
			}
			if _, err := c.conn.Write(Build(pkt)); err != nil {
				return fmt.Errorf("wire: writing frame: %w", err)
			}
		}
	}
}

// Close closes the underlying socket; Run's reader goroutine will observe
// the resulting error and unwind.
func (c *Conn) Close() error {
	return c.conn.Close()
}
