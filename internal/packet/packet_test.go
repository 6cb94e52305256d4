package packet

import (
	"bytes"
	"testing"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	p := Packet{
		Type:     TypePing,
		Sequence: 42,
		ClientID: 7,
		Payload:  []byte("hello session"),
	}
	buf, err := Encode(p, 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(buf, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Type != p.Type || got.Sequence != p.Sequence || got.ClientID != p.ClientID {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !bytes.Equal(got.Payload, p.Payload) {
		t.Errorf("payload mismatch: %q != %q", got.Payload, p.Payload)
	}
}

func TestDecode_BitFlipFailsCrc(t *testing.T) {
	p := Packet{Type: TypePong, Sequence: 1, ClientID: 1, Payload: []byte{1, 2, 3, 4}}
	buf, err := Encode(p, 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i := HeaderSize; i < len(buf); i++ {
		for bit := 0; bit < 8; bit++ {
			flipped := append([]byte(nil), buf...)
			flipped[i] ^= 1 << bit
			if _, err := Decode(flipped, 0); err == nil {
				t.Fatalf("byte %d bit %d: expected CRC failure", i, bit)
			} else if perr, ok := err.(*Error); !ok || perr.Kind != CrcMismatch {
				t.Fatalf("byte %d bit %d: got %v, want CrcMismatch", i, bit, err)
			}
		}
	}
}

func TestDecode_MagicMismatch(t *testing.T) {
	buf := make([]byte, HeaderSize)
	if _, err := Decode(buf, 0); err == nil {
		t.Fatal("expected magic mismatch error")
	} else if perr, ok := err.(*Error); !ok || perr.Kind != MagicMismatch {
		t.Fatalf("got %v, want MagicMismatch", err)
	}
}

func TestDecode_Truncated(t *testing.T) {
	p := Packet{Type: TypePing, Payload: []byte("abcdef")}
	buf, _ := Encode(p, 0)
	if _, err := Decode(buf[:len(buf)-2], 0); err == nil {
		t.Fatal("expected truncated error")
	} else if perr, ok := err.(*Error); !ok || perr.Kind != Truncated {
		t.Fatalf("got %v, want Truncated", err)
	}
}

func TestEncode_LengthExceeded(t *testing.T) {
	p := Packet{Type: TypePing, Payload: make([]byte, 100)}
	if _, err := Encode(p, 10); err == nil {
		t.Fatal("expected length-exceeded error")
	} else if perr, ok := err.(*Error); !ok || perr.Kind != LengthExceeded {
		t.Fatalf("got %v, want LengthExceeded", err)
	}
}

func TestDecode_UnknownType(t *testing.T) {
	p := Packet{Type: Type(999), Payload: []byte("x")}
	buf, err := Encode(p, 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(buf, 0); err == nil {
		t.Fatal("expected unknown-type error")
	} else if perr, ok := err.(*Error); !ok || perr.Kind != UnknownType {
		t.Fatalf("got %v, want UnknownType", err)
	}
}

func TestReadWritePacket_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	p := Packet{Type: TypeHandshakeComplete, Sequence: 1, ClientID: 2}
	if err := WritePacket(&buf, p, 0); err != nil {
		t.Fatalf("WritePacket: %v", err)
	}
	got, err := ReadPacket(&buf, 0)
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if got.Type != p.Type {
		t.Errorf("got type %v, want %v", got.Type, p.Type)
	}
}
