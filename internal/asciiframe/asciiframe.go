// Package asciiframe implements the AsciiFrame packet payload (§3):
// a 24-byte header (width, height, original_size, compressed_size,
// checksum, flags) followed by either raw UTF-8 ANSI bytes or an
// opaque compressed blob. Open Question (a) is resolved here by
// pinning zstd as the fixed codec, gated by a version field so future
// codec changes are negotiable rather than silently incompatible.
package asciiframe

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/klauspost/compress/zstd"
)

// HeaderSize is the fixed on-wire payload header length.
const HeaderSize = 24

// CodecVersion is pinned for this implementation; a future incompatible
// codec change would bump it, and decoders should reject mismatches
// instead of guessing.
const CodecVersion uint8 = 1

// Flag bits within the header's flags byte.
const (
	FlagHasColor   uint8 = 1 << 0
	FlagCompressed uint8 = 1 << 1
)

// Frame is a decoded AsciiFrame payload.
type Frame struct {
	Width    uint32
	Height   uint32
	HasColor bool
	Data     []byte // UTF-8 ANSI bytes, always decompressed
}

var crcTable = crc32.MakeTable(crc32.Castagnoli)

var (
	encoderOnce *zstd.Encoder
	decoderOnce *zstd.Decoder
)

func init() {
	// Both the encoder and decoder are safe for concurrent use by
	// multiple goroutines (per klauspost/compress/zstd's documented
	// contract), so one process-wide instance of each is sufficient.
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		panic(fmt.Sprintf("asciiframe: zstd encoder init: %v", err))
	}
	encoderOnce = enc

	dec, err := zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Sprintf("asciiframe: zstd decoder init: %v", err))
	}
	decoderOnce = dec
}

// Encode builds an AsciiFrame payload. When compress is true, ansiBytes
// is zstd-compressed, and the compressed body is used (with
// FlagCompressed set) only if it is smaller than ansiBytes; otherwise
// ansiBytes is carried verbatim.
func Encode(width, height uint32, hasColor bool, ansiBytes []byte, compress bool) []byte {
	var flags uint8
	if hasColor {
		flags |= FlagHasColor
	}

	body := ansiBytes
	originalSize := uint32(len(ansiBytes))
	compressedSize := uint32(0)
	if compress {
		compressed := encoderOnce.EncodeAll(ansiBytes, nil)
		if len(compressed) < len(ansiBytes) {
			flags |= FlagCompressed
			body = compressed
			compressedSize = uint32(len(compressed))
		}
	}

	checksum := crc32.Checksum(ansiBytes, crcTable)

	out := make([]byte, HeaderSize+len(body))
	binary.BigEndian.PutUint32(out[0:4], width)
	binary.BigEndian.PutUint32(out[4:8], height)
	binary.BigEndian.PutUint32(out[8:12], originalSize)
	binary.BigEndian.PutUint32(out[12:16], compressedSize)
	binary.BigEndian.PutUint32(out[16:20], checksum)
	out[20] = flags
	out[21] = CodecVersion
	// out[22:24] reserved, zero.
	copy(out[HeaderSize:], body)
	return out
}

// Decode parses an AsciiFrame payload, transparently decompressing when
// FlagCompressed is set, and verifies the checksum against the
// decompressed (original) bytes.
func Decode(buf []byte) (Frame, error) {
	if len(buf) < HeaderSize {
		return Frame{}, fmt.Errorf("asciiframe: header needs %d bytes, have %d", HeaderSize, len(buf))
	}
	width := binary.BigEndian.Uint32(buf[0:4])
	height := binary.BigEndian.Uint32(buf[4:8])
	originalSize := binary.BigEndian.Uint32(buf[8:12])
	compressedSize := binary.BigEndian.Uint32(buf[12:16])
	checksum := binary.BigEndian.Uint32(buf[16:20])
	flags := buf[20]
	codecVersion := buf[21]

	compressed := flags&FlagCompressed != 0
	bodyLen := originalSize
	if compressed {
		bodyLen = compressedSize
	}
	if uint32(len(buf)-HeaderSize) < bodyLen {
		return Frame{}, fmt.Errorf("asciiframe: body needs %d bytes, have %d", bodyLen, len(buf)-HeaderSize)
	}
	body := buf[HeaderSize : HeaderSize+int(bodyLen)]

	data := body
	if compressed {
		if codecVersion != CodecVersion {
			return Frame{}, fmt.Errorf("asciiframe: unsupported codec version %d", codecVersion)
		}
		decoded, err := decoderOnce.DecodeAll(body, make([]byte, 0, originalSize))
		if err != nil {
			return Frame{}, fmt.Errorf("asciiframe: zstd decode: %w", err)
		}
		data = decoded
	}

	if crc32.Checksum(data, crcTable) != checksum {
		return Frame{}, fmt.Errorf("asciiframe: checksum mismatch")
	}

	return Frame{
		Width:    width,
		Height:   height,
		HasColor: flags&FlagHasColor != 0,
		Data:     data,
	}, nil
}
