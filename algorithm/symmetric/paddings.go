package symmetric

import (
	"encoding/binary"

	"github.com/samber/lo"
)

// SplitBlocks frames data into 64-bit blocks. A short final chunk is padded with
// zeros; the padding length is not recorded, so the caller has to keep len(data).
// Empty data is framed as a single zero block.
func SplitBlocks(data []byte) []uint64 {
	if len(data) == 0 {
		return []uint64{0}
	}

	chunks := lo.Chunk(data, BlockSize)
	blocks := make([]uint64, len(chunks))
	for i, chunk := range chunks {
		blocks[i] = BlockFromBytes(chunk)
	}
	return blocks
}

// JoinBlocks reassembles blocks into bytes and truncates the result to length. A
// negative length, or one past the end of the blocks, keeps every byte.
func JoinBlocks(blocks []uint64, length int) []byte {
	out := make([]byte, len(blocks)*BlockSize)
	for i, block := range blocks {
		binary.BigEndian.PutUint64(out[i*BlockSize:], block)
	}
	if length >= 0 && length < len(out) {
		out = out[:length]
	}
	return out
}

// BlockFromBytes reads up to BlockSize bytes big-endian, zero padding on the right.
func BlockFromBytes(chunk []byte) uint64 {
	var buf [BlockSize]byte
	copy(buf[:], chunk)
	return binary.BigEndian.Uint64(buf[:])
}

func BlockToBytes(block uint64) []byte {
	out := make([]byte, BlockSize)
	binary.BigEndian.PutUint64(out, block)
	return out
}

// BlockCount is the number of blocks SplitBlocks produces for length bytes.
func BlockCount(length int) int {
	if length == 0 {
		return 1
	}
	return (length + BlockSize - 1) / BlockSize
}
