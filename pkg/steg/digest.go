package steg

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest is the BLAKE3-256 hash of a payload. Encode and Decode both
// report it so a round trip can be checked without keeping the input.
type Digest [32]byte

func DigestOf(data []byte) Digest {
	return blake3.Sum256(data)
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}
