package symmetric

import (
	myErrors "TripleDES/internal/errors"
	"encoding/binary"
	"fmt"
)

const BlockSize = 8

type Direction int

const (
	Encrypt Direction = iota
	Decrypt
)

func (d Direction) String() string {
	switch d {
	case Encrypt:
		return "encrypt"
	case Decrypt:
		return "decrypt"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Reverse returns the direction that undoes d.
func (d Direction) Reverse() Direction {
	if d == Encrypt {
		return Decrypt
	}
	return Encrypt
}

// BlockTransformer is the single-block cipher a chain drives.
type BlockTransformer interface {
	Transform(block, key uint64, decrypting bool) (uint64, error)
}

// PassParams configures one pass of the chaining layer over a block sequence.
type PassParams struct {
	Key        uint64
	IV         uint64
	Direction  Direction
	Concurrent bool
}

func KeyFromBytes(key []byte) (uint64, error) {
	if len(key) != BlockSize {
		return 0, fmt.Errorf("%w: want %d bytes, got %d", myErrors.ErrKeySize, BlockSize, len(key))
	}
	return binary.BigEndian.Uint64(key), nil
}

func IVFromBytes(iv []byte) (uint64, error) {
	if len(iv) != BlockSize {
		return 0, fmt.Errorf("%w: want %d bytes, got %d", myErrors.ErrIVSize, BlockSize, len(iv))
	}
	return binary.BigEndian.Uint64(iv), nil
}
