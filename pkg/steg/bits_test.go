package steg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chessteg/pkg/steg"
)

func TestBytesToBits(t *testing.T) {
	bits := steg.BytesToBits([]byte{0xB5, 0x01})
	assert.Equal(t, 16, bits.Len())
	assert.Equal(t, "1011010100000001", bits.String())
	assert.Equal(t, uint64(0xB), bits.Uint(0, 4))
	assert.Equal(t, uint64(0x5), bits.Uint(4, 4))
	assert.Equal(t, uint64(0x1), bits.Uint(13, 3))
}

func TestBitsToBytesDropsPartialByte(t *testing.T) {
	bits, err := steg.ParseBits("101101001")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xB4}, steg.BitsToBytes(bits))

	bits, err = steg.ParseBits("1111111")
	require.NoError(t, err)
	assert.Empty(t, steg.BitsToBytes(bits))
}

func TestBitsRoundTrip(t *testing.T) {
	data := []byte("any bytes \x00\xff will do")
	assert.Equal(t, data, steg.BitsToBytes(steg.BytesToBits(data)))
	assert.Empty(t, steg.BitsToBytes(steg.BytesToBits(nil)))
}

func TestAppendUint(t *testing.T) {
	var bits steg.Bits
	bits.AppendUint(5, 3)
	bits.AppendUint(0, 0)
	bits.AppendUint(1, 4)
	bits.AppendUint(0x1F, 5)
	assert.Equal(t, "101000111111", bits.String())
	assert.Equal(t, uint64(0x1F), bits.Uint(7, 5))
}

func TestAppendUnaligned(t *testing.T) {
	var bits steg.Bits
	bits.AppendUint(1, 3)
	bits.Append(steg.BytesToBits([]byte{0xF0}))
	bits.Append(steg.Bits{})
	assert.Equal(t, "00111110000", bits.String())

	var aligned steg.Bits
	aligned.Append(steg.BytesToBits([]byte{0xAA}))
	aligned.Append(bits)
	assert.Equal(t, "10101010"+"00111110000", aligned.String())
}

func TestTruncateThenAppend(t *testing.T) {
	bits := steg.BytesToBits([]byte{0xFF})
	bits.Truncate(3)
	assert.Equal(t, "111", bits.String())
	bits.AppendUint(0, 5)
	assert.Equal(t, []byte{0xE0}, steg.BitsToBytes(bits))

	bits.Truncate(0)
	assert.Equal(t, 0, bits.Len())
	bits.AppendUint(0, 8)
	assert.Equal(t, []byte{0x00}, steg.BitsToBytes(bits))
}

func TestParseBitsRejectsOtherRunes(t *testing.T) {
	_, err := steg.ParseBits("0102")
	assert.Error(t, err)
}

func TestSplitChunks(t *testing.T) {
	data := []byte("0123456789")
	cases := []struct {
		count int
		want  []string
	}{
		{1, []string{"0123456789"}},
		{0, []string{"0123456789"}},
		{-3, []string{"0123456789"}},
		{2, []string{"01234", "56789"}},
		{3, []string{"012", "345", "678", "9"}},
		{4, []string{"01", "23", "45", "67", "89"}},
		{10, []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}},
		{25, []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}},
	}
	for _, tc := range cases {
		chunks := steg.SplitChunks(data, tc.count)
		require.Len(t, chunks, len(tc.want), "count=%d", tc.count)
		var joined []byte
		for i, c := range chunks {
			assert.Equal(t, i, c.Index)
			assert.Equal(t, tc.want[i], string(c.Data), "count=%d chunk=%d", tc.count, i)
			joined = append(joined, c.Data...)
		}
		assert.Equal(t, data, joined)
	}
	assert.Empty(t, steg.SplitChunks(nil, 4))
}

func TestWidth(t *testing.T) {
	cases := map[int]int{0: 0, 1: 0, 2: 1, 3: 1, 4: 2, 7: 2, 8: 3, 20: 4, 31: 4, 32: 5, 218: 7}
	for n, want := range cases {
		assert.Equal(t, want, steg.Width(n), "n=%d", n)
	}
}
