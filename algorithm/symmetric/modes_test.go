package symmetric

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// xorCipher is a toy transformer that makes the chaining arithmetic easy to follow.
type xorCipher struct{}

func (xorCipher) Transform(block, key uint64, _ bool) (uint64, error) {
	return block ^ key, nil
}

type failingCipher struct {
	after int
	calls int
}

var errBroken = errors.New("broken core")

func (f *failingCipher) Transform(block, _ uint64, _ bool) (uint64, error) {
	f.calls++
	if f.calls > f.after {
		return 0, errBroken
	}
	return block, nil
}

func TestChainEncryptThreadsCiphertext(t *testing.T) {
	const key, iv = 0xF0F0F0F0F0F0F0F0, 0x1111111111111111
	blocks := []uint64{1, 2, 3}

	require.NoError(t, NewChain(xorCipher{}, PassParams{Key: key, IV: iv, Direction: Encrypt}).Run(blocks))

	c0 := uint64(1) ^ iv ^ key
	c1 := uint64(2) ^ c0 ^ key
	c2 := uint64(3) ^ c1 ^ key
	assert.Equal(t, []uint64{c0, c1, c2}, blocks)
}

func TestChainDecryptUsesSavedCiphertext(t *testing.T) {
	const key, iv = 0xF0F0F0F0F0F0F0F0, 0x1111111111111111
	ciphertext := []uint64{10, 20, 30}
	blocks := append([]uint64(nil), ciphertext...)

	require.NoError(t, NewChain(xorCipher{}, PassParams{Key: key, IV: iv, Direction: Decrypt}).Run(blocks))

	assert.Equal(t, []uint64{
		ciphertext[0] ^ key ^ iv,
		ciphertext[1] ^ key ^ ciphertext[0],
		ciphertext[2] ^ key ^ ciphertext[1],
	}, blocks)
}

func TestChainRoundTrip(t *testing.T) {
	cipher := newDES(t)
	plaintext := []uint64{0, 0, 0, 0x0123456789ABCDEF, 0xFFFFFFFFFFFFFFFF}
	blocks := append([]uint64(nil), plaintext...)

	params := PassParams{Key: 0x133457799BBCDFF1, IV: 0x0102030405060708, Direction: Encrypt}
	require.NoError(t, NewChain(cipher, params).Run(blocks))

	// identical plaintext blocks must not leak through CBC
	assert.NotEqual(t, blocks[0], blocks[1])
	assert.NotEqual(t, blocks[1], blocks[2])

	params.Direction = params.Direction.Reverse()
	require.NoError(t, NewChain(cipher, params).Run(blocks))
	assert.Equal(t, plaintext, blocks)
}

func TestChainStopsOnCoreError(t *testing.T) {
	core := &failingCipher{after: 2}
	blocks := []uint64{1, 2, 3, 4}

	err := NewChain(core, PassParams{Direction: Encrypt}).Run(blocks)
	require.ErrorIs(t, err, errBroken)
	assert.Contains(t, err.Error(), "block 2")
}

func TestChainRejectsUnknownDirection(t *testing.T) {
	_, err := NewChain(xorCipher{}, PassParams{Direction: Direction(9)}).Step(1)
	assert.Error(t, err)

	_, err = NewChain(nil, PassParams{}).Step(1)
	assert.Error(t, err)
}

func TestDirection(t *testing.T) {
	assert.Equal(t, Decrypt, Encrypt.Reverse())
	assert.Equal(t, Encrypt, Decrypt.Reverse())
	assert.Equal(t, "encrypt", Encrypt.String())
	assert.Equal(t, "decrypt", Decrypt.String())
}
