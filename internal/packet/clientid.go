package packet

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// NewClientID generates a fresh per-connection client identifier for the
// header's 4-byte ClientID field (§3). A full UUID doesn't fit the
// field, so the identifier is the low 4 bytes of a random UUIDv4,
// collision-acceptable because ClientID only needs to be distinct
// within one process's set of concurrently open connections, not
// globally unique.
func NewClientID() uint32 {
	id := uuid.New()
	return binary.BigEndian.Uint32(id[12:16])
}
