package packet

import (
	"hash/crc32"
	"io"
)

// ReadPacket reads one framed packet from r: the fixed header first,
// then the declared-length payload, each via io.ReadFull so a short
// read from a streaming transport is retried transparently rather than
// surfaced as Truncated (§4.7: "read in a single logical operation with
// partial-read retry"). Truncated is reserved for a connection that
// closes mid-frame.
func ReadPacket(r io.Reader, maxPayloadSize uint32) (Packet, error) {
	if maxPayloadSize == 0 {
		maxPayloadSize = DefaultMaxPayloadSize
	}

	hdrBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, hdrBuf); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return Packet{}, newError(Truncated, "connection closed reading header: %v", err)
		}
		return Packet{}, err
	}

	h, err := DecodeHeader(hdrBuf)
	if err != nil {
		return Packet{}, err
	}
	if h.PayloadLength > maxPayloadSize {
		return Packet{}, newError(LengthExceeded, "declared length %d exceeds max %d", h.PayloadLength, maxPayloadSize)
	}
	if !KnownType(h.Type) {
		return Packet{}, newError(UnknownType, "type %d", uint16(h.Type))
	}

	payload := make([]byte, h.PayloadLength)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return Packet{}, newError(Truncated, "connection closed reading payload: %v", err)
		}
		return Packet{}, err
	}
	if crc32.Checksum(payload, crcTable) != h.Crc {
		return Packet{}, newError(CrcMismatch, "payload fails CRC32 check")
	}

	return Packet{
		Type:     h.Type,
		Sequence: h.Sequence,
		ClientID: h.ClientID,
		Payload:  payload,
	}, nil
}

// WritePacket encodes p and writes it to w in one call.
func WritePacket(w io.Writer, p Packet, maxPayloadSize uint32) error {
	buf, err := Encode(p, maxPayloadSize)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}
