package steg

import (
	"fmt"
	"strings"
)

// Bits is an append-only bit sequence, most significant bit first within
// each byte. The zero value is empty and ready to use.
type Bits struct {
	buf []byte
	n   int
}

// BytesToBits expands data to 8 bits per byte, MSB first.
func BytesToBits(data []byte) Bits {
	buf := make([]byte, len(data))
	copy(buf, data)
	return Bits{buf: buf, n: 8 * len(data)}
}

// BitsToBytes regroups bits into bytes. A trailing group shorter than
// 8 bits is dropped.
func BitsToBytes(b Bits) []byte {
	out := make([]byte, b.n/8)
	copy(out, b.buf)
	return out
}

// ParseBits reads a string of '0' and '1' characters.
func ParseBits(text string) (Bits, error) {
	var b Bits
	for i, r := range text {
		switch r {
		case '0':
			b.AppendBit(0)
		case '1':
			b.AppendBit(1)
		default:
			return Bits{}, fmt.Errorf("invalid bit %q at %d", r, i)
		}
	}
	return b, nil
}

func (b *Bits) Len() int {
	return b.n
}

func (b *Bits) Bit(i int) uint8 {
	return (b.buf[i>>3] >> (7 - uint(i&7))) & 1
}

func (b *Bits) AppendBit(bit uint8) {
	if b.n&7 == 0 {
		if b.n>>3 < len(b.buf) {
			b.buf[b.n>>3] = 0
		} else {
			b.buf = append(b.buf, 0)
		}
	}
	mask := byte(0x80) >> uint(b.n&7)
	if bit&1 != 0 {
		b.buf[b.n>>3] |= mask
	} else {
		b.buf[b.n>>3] &^= mask
	}
	b.n++
}

// AppendUint appends the low width bits of v, big-endian.
func (b *Bits) AppendUint(v uint64, width int) {
	for i := width - 1; i >= 0; i-- {
		b.AppendBit(uint8(v >> uint(i)))
	}
}

// Uint reads width bits starting at off as a big-endian unsigned integer.
func (b *Bits) Uint(off, width int) uint64 {
	var v uint64
	for i := 0; i < width; i++ {
		v = v<<1 | uint64(b.Bit(off+i))
	}
	return v
}

func (b *Bits) Append(other Bits) {
	if b.n&7 == 0 {
		b.buf = append(b.buf[:b.n>>3], other.buf[:(other.n+7)>>3]...)
		b.n += other.n
		return
	}
	for i := 0; i < other.n; i++ {
		b.AppendBit(other.Bit(i))
	}
}

// Truncate keeps the first n bits.
func (b *Bits) Truncate(n int) {
	if n < 0 || n >= b.n {
		return
	}
	b.n = n
	b.buf = b.buf[:(n+7)>>3]
}

func (b Bits) String() string {
	var sb strings.Builder
	sb.Grow(b.n)
	for i := 0; i < b.n; i++ {
		sb.WriteByte('0' + b.Bit(i))
	}
	return sb.String()
}

// Chunk is a contiguous range of the input encoded as one game.
type Chunk struct {
	Index int
	Data  []byte
}

// SplitChunks cuts data into ranges of max(1, len/count) bytes. The last
// range may be shorter, and there can be more than count ranges when the
// division leaves a remainder.
func SplitChunks(data []byte, count int) []Chunk {
	if len(data) == 0 {
		return nil
	}
	if count < 1 {
		count = 1
	}
	size := len(data) / count
	if size < 1 {
		size = 1
	}
	chunks := make([]Chunk, 0, (len(data)+size-1)/size)
	for off := 0; off < len(data); off += size {
		end := off + size
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Data: data[off:end]})
	}
	return chunks
}
