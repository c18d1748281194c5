package wire

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"
)

func TestConnReadsIncomingHeartbeat(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewConn(server, log, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()

	dl := mustSerial(t, "2222222222")
	frame := Build(NewHeartbeat(dl))

	go func() {
		client.Write(frame)
	}()

	select {
	case pkt := <-c.Incoming:
		hb, ok := pkt.(*Heartbeat)
		if !ok {
			t.Fatalf("got %T, want *Heartbeat", pkt)
		}
		if hb.Datalog() != dl {
			t.Errorf("datalog = %v, want %v", hb.Datalog(), dl)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for incoming packet")
	}

	cancel()
	client.Close()
}

func TestConnWritesQueuedPacket(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewConn(server, log, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go c.Run(ctx)

	dl := mustSerial(t, "2222222222")
	want := Build(NewHeartbeat(dl))

	c.Send <- NewHeartbeat(dl)

	got := make([]byte, len(want))
	if _, err := io.ReadFull(client, got); err != nil {
		t.Fatalf("reading written frame: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("written frame = % X, want % X", got, want)
		}
	}

	cancel()
}
