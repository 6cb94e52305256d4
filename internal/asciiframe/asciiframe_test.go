package asciiframe

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncodeDecode_Uncompressed(t *testing.T) {
	ansi := []byte(" @\n.#")
	buf := Encode(2, 2, true, ansi, false)
	f, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Width != 2 || f.Height != 2 || !f.HasColor {
		t.Errorf("header mismatch: %+v", f)
	}
	if !bytes.Equal(f.Data, ansi) {
		t.Errorf("data mismatch: %q != %q", f.Data, ansi)
	}
}

func TestEncodeDecode_Compressed(t *testing.T) {
	ansi := []byte(strings.Repeat("@", 4096))
	buf := Encode(64, 64, false, ansi, true)
	if buf[20]&FlagCompressed == 0 {
		t.Fatal("expected compressed flag to be set for highly repetitive input")
	}
	f, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(f.Data, ansi) {
		t.Error("decompressed data does not match original")
	}
}

func TestEncode_SkipsCompressionWhenLarger(t *testing.T) {
	ansi := []byte("#")
	buf := Encode(1, 1, false, ansi, true)
	if buf[20]&FlagCompressed != 0 {
		t.Error("expected compression to be skipped for tiny incompressible input")
	}
}

func TestDecode_ChecksumMismatch(t *testing.T) {
	ansi := []byte("hello")
	buf := Encode(1, 1, false, ansi, false)
	buf[HeaderSize] ^= 0xff
	if _, err := Decode(buf); err == nil {
		t.Fatal("expected checksum mismatch error")
	}
}
