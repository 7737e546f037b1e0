// Package des implements the single-block DES transform over a table set supplied at
// start-up. Blocks and keys are uint64 values whose most significant bit is bit
// position 1 of the tables.
package des

import (
	myErrors "TripleDES/internal/errors"
	"encoding/binary"
	"fmt"
)

const BlockSize = 8

type Cipher struct {
	tables    *Tables
	expansion [SubkeyBits]Position
	pbox      [32]Position
}

// New validates the tables and returns a core that is safe for concurrent use.
func New(tables *Tables) (*Cipher, error) {
	if tables == nil {
		return nil, myErrors.ErrTablesUnavailable
	}
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("invalid des tables: %w", err)
	}

	return &Cipher{
		tables:    tables,
		expansion: tables.flatExpansion(),
		pbox:      tables.flatPBox(),
	}, nil
}

// Transform runs the 16 Feistel rounds over block. When decrypting, the key schedule
// is walked backwards with right rotations instead of left ones.
func (c *Cipher) Transform(block, key uint64, decrypting bool) (uint64, error) {
	if c == nil || c.tables == nil {
		return 0, myErrors.ErrTablesUnavailable
	}

	x := permute(block, BlockBits, c.tables.Initial[:])
	left, right := uint32(x>>32), uint32(x)

	schedule := dropParityBits(key)
	for r := 0; r < Rounds; r++ {
		var subkey uint64
		schedule, subkey = c.nextRoundKey(schedule, r, decrypting)

		left, right = right, left^c.feistel(right, subkey)
	}

	return permute(uint64(right)<<32|uint64(left), BlockBits, c.tables.Final[:]), nil
}

// RoundKeys returns the 48-bit subkeys in the order Transform applies them.
func (c *Cipher) RoundKeys(key uint64, decrypting bool) ([Rounds]uint64, error) {
	var keys [Rounds]uint64
	if c == nil || c.tables == nil {
		return keys, myErrors.ErrTablesUnavailable
	}

	schedule := dropParityBits(key)
	for r := range keys {
		schedule, keys[r] = c.nextRoundKey(schedule, r, decrypting)
	}
	return keys, nil
}

func (c *Cipher) EncryptBlock(dst, src []byte, key uint64) error {
	return c.transformBytes(dst, src, key, false)
}

func (c *Cipher) DecryptBlock(dst, src []byte, key uint64) error {
	return c.transformBytes(dst, src, key, true)
}

func (c *Cipher) transformBytes(dst, src []byte, key uint64, decrypting bool) error {
	if len(src) != BlockSize || len(dst) < BlockSize {
		return fmt.Errorf("block must be %d bytes, got %d", BlockSize, len(src))
	}
	out, err := c.Transform(binary.BigEndian.Uint64(src), key, decrypting)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint64(dst, out)
	return nil
}

// nextRoundKey rotates both 28-bit halves of the schedule for round r and contracts
// the rotated state to the round's subkey. The rotated state feeds the next round.
func (c *Cipher) nextRoundKey(schedule uint64, r int, decrypting bool) (uint64, uint64) {
	cHalf, dHalf := splitKey(schedule)
	if decrypting {
		shift := c.tables.DecryptShifts[r]
		cHalf, dHalf = rotr28(cHalf, shift), rotr28(dHalf, shift)
	} else {
		shift := c.tables.EncryptShifts[r]
		cHalf, dHalf = rotl28(cHalf, shift), rotl28(dHalf, shift)
	}

	schedule = joinKey(cHalf, dHalf)
	return schedule, permute(schedule, KeyBits, c.tables.Contraction[:])
}

func (c *Cipher) feistel(half uint32, subkey uint64) uint32 {
	x := permute(uint64(half), 32, c.expansion[:]) ^ subkey
	return uint32(permute(c.substitute(x), 32, c.pbox[:]))
}

// substitute maps the 48-bit value through the eight S-boxes, six bits in and four
// bits out per box.
func (c *Cipher) substitute(x uint64) uint64 {
	var out uint64
	for i := 0; i < SBoxCount; i++ {
		group := uint8(x>>(SubkeyBits-6*(i+1))) & 0x3f
		row, col := c.sboxIndex(group)
		out = out<<4 | uint64(c.tables.SBoxes[i][row][col])
	}
	return out
}

// sboxIndex splits a 6-bit group b1..b6 (b1 read first) into its row (b1, b6) and
// column (b2..b5).
func (c *Cipher) sboxIndex(group uint8) (row, col uint8) {
	b := func(n uint) uint8 { return (group >> (6 - n)) & 1 }

	if c.tables.Indexing == IndexMSBFirst {
		return b(1)<<1 | b(6), (group >> 1) & 0xf
	}
	return b(1) | b(6)<<1, b(2) | b(3)<<1 | b(4)<<2 | b(5)<<3
}
