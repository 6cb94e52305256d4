package handshake

import (
	"context"
	"io"

	"github.com/zfogg/ascii-chat-sub008/internal/packet"
)

// readWithContext performs one ReadPacket, respecting ctx cancellation.
// The read itself still runs in a background goroutine because io.Reader
// has no cancellation hook of its own; if ctx expires before the read
// completes, this call returns promptly but the goroutine lingers until
// the underlying Conn is closed or produces data. Closing the transport
// (done by abort on every failure, when the Conn implements io.Closer)
// is what actually unblocks it.
func readWithContext(ctx context.Context, r io.Reader, maxPayloadSize uint32) (packet.Packet, error) {
	type result struct {
		p   packet.Packet
		err error
	}
	ch := make(chan result, 1)
	go func() {
		p, err := packet.ReadPacket(r, maxPayloadSize)
		ch <- result{p, err}
	}()
	select {
	case <-ctx.Done():
		return packet.Packet{}, ctx.Err()
	case res := <-ch:
		return res.p, res.err
	}
}

func writeWithContext(ctx context.Context, w io.Writer, p packet.Packet, maxPayloadSize uint32) error {
	ch := make(chan error, 1)
	go func() {
		ch <- packet.WritePacket(w, p, maxPayloadSize)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-ch:
		return err
	}
}
